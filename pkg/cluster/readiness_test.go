package cluster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robustmq/robustmq/pkg/rpc"
	"github.com/robustmq/robustmq/pkg/types"
)

func TestWaitForClusterReady_ReturnsOnceEveryShardHasALeader(t *testing.T) {
	client := &fakeMetaClient{
		statusResp: &rpc.GetClusterStatusResponse{
			Shards: map[string]rpc.ShardStatus{
				"metadata_0": {RunningState: "Err", CurrentLeader: 0},
			},
		},
	}
	c := NewController(client, "default", types.BrokerNode{NodeID: 1})

	go func() {
		time.Sleep(20 * time.Millisecond)
		client.mu.Lock()
		client.statusResp = &rpc.GetClusterStatusResponse{
			Shards: map[string]rpc.ShardStatus{
				"metadata_0": {RunningState: "Ok", CurrentLeader: 1},
				"offset_0":   {RunningState: "Ok", CurrentLeader: 2},
			},
		}
		client.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.WaitForClusterReady(ctx))
}

func TestWaitForClusterReady_StopsWhenContextEnds(t *testing.T) {
	client := &fakeMetaClient{statusResp: &rpc.GetClusterStatusResponse{Shards: map[string]rpc.ShardStatus{}}}
	c := NewController(client, "default", types.BrokerNode{NodeID: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.Error(t, c.WaitForClusterReady(ctx))
}

func TestClusterReady_EmptyShardMapIsNotReady(t *testing.T) {
	require.False(t, clusterReady(&rpc.GetClusterStatusResponse{}))
}
