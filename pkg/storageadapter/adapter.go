// Package storageadapter implements the shard-scoped record store every
// Raft group applies its committed entries into: one append-only record
// log per (namespace, shard), with key/tag/timestamp secondary indexes and
// per-consumer-group committed offsets.
package storageadapter

import (
	"sort"
	"sync"

	"github.com/robustmq/robustmq/pkg/kv"
	"github.com/robustmq/robustmq/pkg/types"
)

// ReadOptions bounds a ReadByOffset scan.
type ReadOptions struct {
	MaxRecordNum int // 0 means "use the adapter default"
	MaxSize      int // bytes; 0 means "no size limit"
}

const defaultMaxRecordNum = 100

// Adapter is the storage adapter: a kv.Engine plus one single-writer
// goroutine per (namespace, shard) pair it has ever seen a write for.
type Adapter struct {
	engine kv.Engine

	mu      sync.Mutex
	writers map[string]*shardWriter
	closed  bool
}

// New wraps an already-open kv.Engine.
func New(engine kv.Engine) *Adapter {
	return &Adapter{
		engine:  engine,
		writers: make(map[string]*shardWriter),
	}
}

func shardMapKey(namespace, shard string) string { return namespace + "/" + shard }

// CreateShard registers a new (namespace, shard) pair. It fails with
// ErrShardExists if the shard's offset counter already exists.
func (a *Adapter) CreateShard(info types.ShardInfo) error {
	key := shardKey(info.Namespace, info.ShardName)

	if _, err := a.engine.Get(types.NamespaceOffset, key); err == nil {
		return ErrShardExists
	} else if err != kv.ErrNotFound {
		return err
	}

	data, err := marshalShardInfo(info)
	if err != nil {
		return err
	}

	var batch kv.Batch
	batch.Put(types.NamespaceShard, key, data)
	batch.Put(types.NamespaceOffset, key, offsetValue(0))
	return a.engine.BatchWrite(batch)
}

// ListShard returns every ShardInfo in namespace, or only the one named
// shard if shard is non-empty.
func (a *Adapter) ListShard(namespace, shard string) ([]types.ShardInfo, error) {
	if shard != "" {
		data, err := a.engine.Get(types.NamespaceShard, shardKey(namespace, shard))
		if err != nil {
			if err == kv.ErrNotFound {
				return nil, nil
			}
			return nil, err
		}
		info, err := unmarshalShardInfo(data)
		if err != nil {
			return nil, err
		}
		return []types.ShardInfo{info}, nil
	}

	kvs, err := a.engine.PrefixScan(types.NamespaceShard, namespace+"/")
	if err != nil {
		return nil, err
	}
	out := make([]types.ShardInfo, 0, len(kvs))
	for _, kv := range kvs {
		info, err := unmarshalShardInfo(kv.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// DeleteShard stops the shard's writer (if running) and removes every
// record, every secondary index entry, and the shard's root keys.
func (a *Adapter) DeleteShard(namespace, shard string) error {
	a.mu.Lock()
	if w, ok := a.writers[shardMapKey(namespace, shard)]; ok {
		w.stop()
		delete(a.writers, shardMapKey(namespace, shard))
	}
	a.mu.Unlock()

	if err := a.engine.DeletePrefix(types.NamespaceRecord, recordPrefix(namespace, shard)); err != nil {
		return err
	}
	if err := a.engine.DeletePrefix(types.NamespaceKey, recordPrefix(namespace, shard)); err != nil {
		return err
	}
	if err := a.engine.DeletePrefix(types.NamespaceTag, recordPrefix(namespace, shard)); err != nil {
		return err
	}
	if err := a.engine.DeletePrefix(types.NamespaceTimestamp, timestampIndexPrefix(namespace, shard)); err != nil {
		return err
	}
	if err := a.engine.Delete(types.NamespaceOffset, shardKey(namespace, shard)); err != nil {
		return err
	}
	return a.engine.Delete(types.NamespaceShard, shardKey(namespace, shard))
}

// Write stores a single record and returns its assigned offset.
func (a *Adapter) Write(namespace, shard string, record *types.Record) (uint64, error) {
	offsets, err := a.BatchWrite(namespace, shard, []*types.Record{record})
	if err != nil {
		return 0, err
	}
	return offsets[0], nil
}

// BatchWrite stores records atomically via the shard's single writer
// thread and returns their assigned offsets in order.
func (a *Adapter) BatchWrite(namespace, shard string, records []*types.Record) ([]uint64, error) {
	w, err := a.writerFor(namespace, shard)
	if err != nil {
		return nil, err
	}
	return w.submit(records)
}

func (a *Adapter) writerFor(namespace, shard string) (*shardWriter, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}

	key := shardMapKey(namespace, shard)
	if w, ok := a.writers[key]; ok {
		return w, nil
	}
	w := newShardWriter(a.engine, namespace, shard)
	a.writers[key] = w
	return w, nil
}

// ReadByOffset returns up to opts.MaxRecordNum records starting at offset
// (inclusive), stopping early if their total size would exceed
// opts.MaxSize.
func (a *Adapter) ReadByOffset(namespace, shard string, offset uint64, opts ReadOptions) ([]*types.Record, error) {
	limit := opts.MaxRecordNum
	if limit <= 0 {
		limit = defaultMaxRecordNum
	}

	kvs, err := a.engine.PrefixScan(types.NamespaceRecord, recordPrefix(namespace, shard))
	if err != nil {
		return nil, err
	}

	out := make([]*types.Record, 0, limit)
	size := 0
	for _, kv := range kvs {
		rec, err := types.UnmarshalRecord(kv.Value)
		if err != nil {
			return nil, err
		}
		if rec.Offset < offset {
			continue
		}
		if opts.MaxSize > 0 && size+len(kv.Value) > opts.MaxSize && len(out) > 0 {
			break
		}
		out = append(out, rec)
		size += len(kv.Value)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ReadByKey returns the most recently written record with the given key,
// if any.
func (a *Adapter) ReadByKey(namespace, shard, key string) (*types.Record, error) {
	v, err := a.engine.Get(types.NamespaceKey, keyIndexKey(namespace, shard, key))
	if err != nil {
		if err == kv.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return a.readAtOffset(namespace, shard, parseOffsetValue(v))
}

// ReadByTag returns every record carrying the given tag, oldest first.
// Unlike ReadByKey, a tag is not unique to one record, so this can return
// more than one entry.
func (a *Adapter) ReadByTag(namespace, shard, tag string) ([]*types.Record, error) {
	kvs, err := a.engine.PrefixScan(types.NamespaceTag, tagIndexPrefix(namespace, shard, tag))
	if err != nil {
		return nil, err
	}

	out := make([]*types.Record, 0, len(kvs))
	for _, kv := range kvs {
		rec, err := a.readAtOffset(namespace, shard, parseOffsetValue(kv.Value))
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (a *Adapter) readAtOffset(namespace, shard string, offset uint64) (*types.Record, error) {
	data, err := a.engine.Get(types.NamespaceRecord, recordKey(namespace, shard, offset))
	if err != nil {
		if err == kv.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return types.UnmarshalRecord(data)
}

// GetOffsetByTimestamp returns the offset of the earliest record written
// at or after ts, or ok=false if none exists.
func (a *Adapter) GetOffsetByTimestamp(namespace, shard string, ts int64) (offset uint64, ok bool, err error) {
	kvs, err := a.engine.PrefixScan(types.NamespaceTimestamp, timestampIndexPrefix(namespace, shard))
	if err != nil {
		return 0, false, err
	}
	prefix := timestampIndexPrefix(namespace, shard) + kv.PadUint64(uint64(ts))
	idx := sort.Search(len(kvs), func(i int) bool { return kvs[i].Key >= prefix })
	if idx >= len(kvs) {
		return 0, false, nil
	}
	return parseOffsetValue(kvs[idx].Value), true, nil
}

// CommitOffset records, for group, the last offset a consumer has
// processed in each named shard.
func (a *Adapter) CommitOffset(group types.RaftGroupName, namespace string, shardOffsets map[string]uint64) error {
	var batch kv.Batch
	for shard, offset := range shardOffsets {
		batch.Put(types.NamespaceGroup, groupKey(string(group), namespace, shard), offsetValue(offset))
	}
	return a.engine.BatchWrite(batch)
}

// GetOffsetByGroup returns every shard offset committed under group.
func (a *Adapter) GetOffsetByGroup(group types.RaftGroupName) ([]types.ShardOffset, error) {
	kvs, err := a.engine.PrefixScan(types.NamespaceGroup, groupPrefix(string(group)))
	if err != nil {
		return nil, err
	}

	out := make([]types.ShardOffset, 0, len(kvs))
	for _, kv := range kvs {
		namespace, shard, ok := splitGroupKey(string(group), kv.Key)
		if !ok {
			continue
		}
		out = append(out, types.ShardOffset{
			Group:     group,
			Namespace: namespace,
			Shard:     shard,
			Offset:    parseOffsetValue(kv.Value),
		})
	}
	return out, nil
}

// Close stops every shard writer and closes the underlying engine.
func (a *Adapter) Close() error {
	a.mu.Lock()
	a.closed = true
	for _, w := range a.writers {
		w.stop()
	}
	a.mu.Unlock()

	return a.engine.Close()
}
