package storageadapter

import (
	"hash/crc32"
	"time"

	"github.com/robustmq/robustmq/pkg/kv"
	"github.com/robustmq/robustmq/pkg/metrics"
	"github.com/robustmq/robustmq/pkg/types"
)

// writeTimeout bounds how long a caller waits for the shard's writer thread
// to reply before it gives up; the writer itself keeps running.
const writeTimeout = 30 * time.Second

type writeRequest struct {
	records []*types.Record
	reply   chan writeResult
}

type writeResult struct {
	offsets []uint64
	err     error
}

// shardWriter is the single goroutine that owns one (namespace, shard)'s
// offset counter and commits every batch touching it atomically. Callers
// never write to the engine directly; they rendezvous with this goroutine.
type shardWriter struct {
	namespace string
	shard     string
	engine    kv.Engine
	requests  chan writeRequest
	stopCh    chan struct{}
}

func newShardWriter(engine kv.Engine, namespace, shard string) *shardWriter {
	w := &shardWriter{
		namespace: namespace,
		shard:     shard,
		engine:    engine,
		requests:  make(chan writeRequest),
		stopCh:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *shardWriter) run() {
	for {
		select {
		case req := <-w.requests:
			req.reply <- w.commit(req.records)
		case <-w.stopCh:
			return
		}
	}
}

func (w *shardWriter) stop() {
	close(w.stopCh)
}

// commit assigns dense offsets to records and atomically writes each
// primary record, its key, tag and timestamp index entries, and the
// next-offset counter.
func (w *shardWriter) commit(records []*types.Record) writeResult {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.StorageWriteDuration, w.namespace)

	next, err := w.nextOffset()
	if err != nil {
		return writeResult{err: err}
	}

	var batch kv.Batch
	offsets := make([]uint64, 0, len(records))
	for i, r := range records {
		offset := next + uint64(i)
		r.Offset = offset
		r.CRC32 = crc32.ChecksumIEEE(r.Data)
		offsets = append(offsets, offset)

		data, err := r.Marshal()
		if err != nil {
			return writeResult{err: err}
		}

		batch.Put(types.NamespaceRecord, recordKey(w.namespace, w.shard, offset), data)
		if r.Key != "" {
			batch.Put(types.NamespaceKey, keyIndexKey(w.namespace, w.shard, r.Key), offsetValue(offset))
		}
		for _, tag := range r.Tags {
			if tag == "" {
				continue
			}
			batch.Put(types.NamespaceTag, tagIndexKey(w.namespace, w.shard, tag, offset), offsetValue(offset))
		}
		batch.Put(types.NamespaceTimestamp, timestampIndexKey(w.namespace, w.shard, r.Timestamp, offset), offsetValue(offset))
	}

	nextAfter := next + uint64(len(records))
	batch.Put(types.NamespaceOffset, shardKey(w.namespace, w.shard), offsetValue(nextAfter))

	if err := w.engine.BatchWrite(batch); err != nil {
		return writeResult{err: err}
	}
	return writeResult{offsets: offsets}
}

func (w *shardWriter) nextOffset() (uint64, error) {
	v, err := w.engine.Get(types.NamespaceOffset, shardKey(w.namespace, w.shard))
	if err != nil {
		if err == kv.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return parseOffsetValue(v), nil
}

// submit sends a batch to the writer and waits up to writeTimeout for its reply.
func (w *shardWriter) submit(records []*types.Record) ([]uint64, error) {
	reply := make(chan writeResult, 1)
	req := writeRequest{records: records, reply: reply}

	select {
	case w.requests <- req:
	case <-w.stopCh:
		return nil, ErrClosed
	}

	select {
	case res := <-reply:
		return res.offsets, res.err
	case <-time.After(writeTimeout):
		metrics.StorageWriteTimeoutsTotal.WithLabelValues(w.namespace).Inc()
		return nil, ErrWriteTimeout
	}
}
