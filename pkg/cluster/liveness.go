package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/robustmq/robustmq/pkg/log"
	"github.com/robustmq/robustmq/pkg/raftgroup"
	"github.com/robustmq/robustmq/pkg/types"
)

// Notifier fans a single notification out to every connected broker. Its
// shape matches nodecall.Notifier / (*nodecall.Manager).Send, so a
// *nodecall.Manager satisfies it without this package importing nodecall.
type Notifier interface {
	Send(ctx context.Context, data types.NodeCallData) error
}

// LivenessMonitor periodically sweeps Registry for nodes that have gone
// silent past heartbeatTimeout, evicts them from the metadata Raft group,
// and fans out an update_cache delete so every broker drops the node from
// its own cache.
type LivenessMonitor struct {
	registry *Registry
	raft     *raftgroup.MultiRaftManager
	notifier Notifier

	heartbeatTimeout time.Duration
	checkInterval    time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewLivenessMonitor builds a monitor that sweeps every checkInterval for
// nodes silent past heartbeatTimeout. heartbeatTimeout <= 0 defaults to
// 30s; checkInterval <= 0 defaults to a third of heartbeatTimeout.
func NewLivenessMonitor(registry *Registry, raft *raftgroup.MultiRaftManager, notifier Notifier, heartbeatTimeout, checkInterval time.Duration) *LivenessMonitor {
	if heartbeatTimeout <= 0 {
		heartbeatTimeout = 30 * time.Second
	}
	if checkInterval <= 0 {
		checkInterval = heartbeatTimeout / 3
	}
	if checkInterval <= 0 {
		checkInterval = time.Second
	}
	return &LivenessMonitor{
		registry:         registry,
		raft:             raft,
		notifier:         notifier,
		heartbeatTimeout: heartbeatTimeout,
		checkInterval:    checkInterval,
		stopCh:           make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (l *LivenessMonitor) Start() {
	l.wg.Add(1)
	go l.run()
}

func (l *LivenessMonitor) run() {
	defer l.wg.Done()
	ticker := time.NewTicker(l.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stopCh:
			return
		}
	}
}

func (l *LivenessMonitor) sweep() {
	cutoff := time.Now().Add(-l.heartbeatTimeout)
	for _, nodeID := range l.registry.StaleSince(cutoff) {
		l.evict(nodeID)
	}
}

func (l *LivenessMonitor) evict(nodeID uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := l.raft.WriteMetadata(ctx, types.StorageData{
		DataType:  types.StorageDataTypeDelete,
		Namespace: types.NamespaceBroker,
		Key:       fmt.Sprintf("%d", nodeID),
	}); err != nil {
		log.Error(fmt.Sprintf("cluster: liveness gc failed to delete node %d from metadata group: %v", nodeID, err))
		return
	}
	l.registry.Remove(nodeID)

	payload, err := json.Marshal(types.UpdateCachePayload{
		Action:   "delete",
		Resource: "Node",
		Key:      fmt.Sprintf("%d", nodeID),
	})
	if err != nil {
		log.Error(fmt.Sprintf("cluster: liveness gc failed to encode delete notification for node %d: %v", nodeID, err))
		return
	}
	if err := l.notifier.Send(ctx, types.NodeCallData{Type: types.NodeCallUpdateCache, Payload: payload}); err != nil {
		log.Error(fmt.Sprintf("cluster: liveness gc failed to notify node %d deletion: %v", nodeID, err))
		return
	}
	log.Info(fmt.Sprintf("cluster: evicted node %d after %s without a heartbeat", nodeID, l.heartbeatTimeout))
}

// Shutdown stops the sweep loop and waits for it to exit.
func (l *LivenessMonitor) Shutdown() {
	close(l.stopCh)
	l.wg.Wait()
}
