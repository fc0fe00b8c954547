package nodecall

import (
	"fmt"
	"hash/fnv"

	"github.com/robustmq/robustmq/pkg/log"
	"github.com/robustmq/robustmq/pkg/types"
)

// nodeRouter is the per-node stage of the pipeline: it receives every
// message addressed to one node, and fans it out to one of W workers by
// partition key so messages sharing a client id always serialize through
// the same worker.
type nodeRouter struct {
	nodeID  uint64
	addr    string
	inbox   chan types.NodeCallData
	workers []*worker
	stopCh  chan struct{}
}

func newNodeRouter(nodeID uint64, addr string, sender Sender, stopCh chan struct{}) *nodeRouter {
	r := &nodeRouter{
		nodeID:  nodeID,
		addr:    addr,
		inbox:   make(chan types.NodeCallData, nodeQueueCapacity),
		workers: make([]*worker, workerCount),
		stopCh:  stopCh,
	}
	for i := 0; i < workerCount; i++ {
		r.workers[i] = newWorker(nodeID, addr, i, sender)
		go r.workers[i].run(stopCh)
	}
	go r.run()
	log.Debug(fmt.Sprintf("nodecall: opened router for node %d at %s", nodeID, addr))
	return r
}

func (r *nodeRouter) run() {
	for {
		select {
		case data := <-r.inbox:
			idx := workerIndex(data.PartitionKey)
			select {
			case r.workers[idx].inbox <- data:
			case <-r.stopCh:
				return
			}
		case <-r.stopCh:
			return
		}
	}
}

// send is non-blocking: a full router inbox is treated as a dead node by
// the dispatcher, which then drops the channel.
func (r *nodeRouter) send(data types.NodeCallData) bool {
	select {
	case r.inbox <- data:
		return true
	default:
		return false
	}
}

// workerIndex implements the partition-key routing rule: worker 0 carries
// all unordered traffic (empty partition key), every other key hashes
// into one of the remaining W-1 workers so same-key traffic never reorders.
func workerIndex(partitionKey string) int {
	if partitionKey == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(partitionKey))
	return 1 + int(h.Sum32()%uint32(workerCount-1))
}

