package nodecall

import (
	"context"
	"fmt"
	"time"

	"github.com/robustmq/robustmq/pkg/log"
	"github.com/robustmq/robustmq/pkg/metrics"
	"github.com/robustmq/robustmq/pkg/types"
)

// worker is the final pipeline stage: it batches same-variant messages and
// hands each batch to the Sender in one call, retrying with backoff before
// dropping.
type worker struct {
	nodeID uint64
	addr   string
	index  int
	sender Sender
	inbox  chan types.NodeCallData
}

func newWorker(nodeID uint64, addr string, index int, sender Sender) *worker {
	return &worker{
		nodeID: nodeID,
		addr:   addr,
		index:  index,
		sender: sender,
		inbox:  make(chan types.NodeCallData, batchSize*2),
	}
}

func (w *worker) run(stopCh chan struct{}) {
	for {
		select {
		case data := <-w.inbox:
			batch := w.drainBatch(data)
			w.deliver(batch)
		case <-stopCh:
			return
		}
	}
}

// drainBatch collects up to batchSize messages: the one already received
// plus whatever else is immediately available, non-blocking.
func (w *worker) drainBatch(first types.NodeCallData) []types.NodeCallData {
	batch := make([]types.NodeCallData, 1, batchSize)
	batch[0] = first
	for len(batch) < batchSize {
		select {
		case data := <-w.inbox:
			batch = append(batch, data)
		default:
			return batch
		}
	}
	return batch
}

func (w *worker) deliver(batch []types.NodeCallData) {
	groups := make(map[types.NodeCallDataType][]types.NodeCallData)
	for _, data := range batch {
		groups[data.Type] = append(groups[data.Type], data)
	}

	for callType, group := range groups {
		callType := callType
		group := group
		err := w.retry(func(ctx context.Context) error {
			return w.send(ctx, callType, group)
		})
		if err != nil {
			log.Error(fmt.Sprintf("nodecall: node %d worker %d dropping %d %s messages: %v",
				w.nodeID, w.index, len(group), callType, err))
			metrics.NodeCallDroppedTotal.WithLabelValues(string(callType), "rpc_failed").Add(float64(len(group)))
			continue
		}
		metrics.NodeCallDispatchedTotal.WithLabelValues(string(callType)).Add(float64(len(group)))
	}
}

func (w *worker) send(ctx context.Context, callType types.NodeCallDataType, group []types.NodeCallData) error {
	switch callType {
	case types.NodeCallUpdateCache:
		return w.sender.SendUpdateCache(ctx, w.addr, group)
	case types.NodeCallDeleteSession:
		return w.sender.SendDeleteSession(ctx, w.addr, group)
	case types.NodeCallSendLastWill:
		return w.sender.SendLastWill(ctx, w.addr, group)
	case types.NodeCallUpdateJournalMeta:
		return w.sender.SendUpdateJournalCache(ctx, w.addr, group)
	default:
		return fmt.Errorf("nodecall: unknown call type %q", callType)
	}
}

// retry implements RPC_MAX_RETRIES=3 with exponential backoff 50ms*2^(attempt-1).
func (w *worker) retry(fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := fn(ctx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < maxRetries {
			metrics.NodeCallRetriesTotal.Inc()
			backoff := time.Duration(retryBaseDelayMs*(1<<(attempt-1))) * time.Millisecond
			time.Sleep(backoff)
		}
	}
	return lastErr
}
