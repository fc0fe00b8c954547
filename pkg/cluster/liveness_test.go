package cluster

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robustmq/robustmq/pkg/types"
)

type recordingNotifier struct {
	mu  sync.Mutex
	got []types.NodeCallData
}

func (n *recordingNotifier) Send(ctx context.Context, data types.NodeCallData) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, data)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.got)
}

func TestLivenessMonitor_EvictsNodeSilentPastTimeout(t *testing.T) {
	raft := singleShardMultiRaft(t)
	registry := NewRegistry()
	registry.Register(types.BrokerNode{NodeID: 1, NodeInnerAddr: "10.0.0.1:9000"})
	notifier := &recordingNotifier{}

	mon := NewLivenessMonitor(registry, raft, notifier, 30*time.Millisecond, 10*time.Millisecond)
	mon.Start()
	defer mon.Shutdown()

	require.Eventually(t, func() bool {
		_, ok := registry.Get(1)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return notifier.count() >= 1 }, time.Second, 10*time.Millisecond)
}

func TestLivenessMonitor_TouchedNodeSurvives(t *testing.T) {
	raft := singleShardMultiRaft(t)
	registry := NewRegistry()
	registry.Register(types.BrokerNode{NodeID: 1, NodeInnerAddr: "10.0.0.1:9000"})
	notifier := &recordingNotifier{}

	mon := NewLivenessMonitor(registry, raft, notifier, 100*time.Millisecond, 25*time.Millisecond)
	mon.Start()
	defer mon.Shutdown()

	stop := time.After(250 * time.Millisecond)
	for {
		select {
		case <-stop:
			_, ok := registry.Get(1)
			require.True(t, ok)
			require.Equal(t, 0, notifier.count())
			return
		case <-time.After(20 * time.Millisecond):
			registry.Touch(1)
		}
	}
}
