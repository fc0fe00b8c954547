package raftgroup

import (
	"context"
	"testing"
	"time"

	"github.com/robustmq/robustmq/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestRouteShard_EmptyKeyRoutesToShardZero(t *testing.T) {
	require.Equal(t, 0, RouteShard("", 5))
}

func TestRouteShard_SingleShardAlwaysZero(t *testing.T) {
	require.Equal(t, 0, RouteShard("anything", 1))
}

func TestRouteShard_Deterministic(t *testing.T) {
	a := RouteShard("client-123", 8)
	b := RouteShard("client-123", 8)
	require.Equal(t, a, b)
	require.True(t, a >= 0 && a < 8)
}

func TestRaftGroup_WriteAppliesToRoutedShard(t *testing.T) {
	applier0 := &nopApplier{}
	applier1 := &nopApplier{}
	shard0 := bootstrapSingleShard(t, types.RaftGroupOffset, 0, applier0)
	shard1 := bootstrapSingleShard(t, types.RaftGroupOffset, 1, applier1)

	group := NewRaftGroup(types.RaftGroupOffset, []*RaftShard{shard0, shard1}, 2*time.Second)

	data := types.StorageData{DataType: types.StorageDataTypeSet, Namespace: "broker", Key: "k", Value: []byte("v")}
	require.NoError(t, group.Write(context.Background(), "", data))

	// empty key always routes to shard 0
	require.Len(t, applier0.applied, 1)
	require.Empty(t, applier1.applied)
}

func TestRaftGroup_WriteAfterShutdownFails(t *testing.T) {
	applier := &nopApplier{}
	shard := bootstrapSingleShard(t, types.RaftGroupOffset, 0, applier)

	group := NewRaftGroup(types.RaftGroupOffset, []*RaftShard{shard}, 2*time.Second)
	group.Shutdown()

	data := types.StorageData{DataType: types.StorageDataTypeSet, Namespace: "broker", Key: "k", Value: []byte("v")}
	require.Error(t, group.Write(context.Background(), "k", data))
}

func TestRaftGroup_WriteTimeoutIsFlooredAt30s(t *testing.T) {
	applier := &nopApplier{}
	shard := bootstrapSingleShard(t, types.RaftGroupMetadata, 0, applier)

	group := NewRaftGroup(types.RaftGroupMetadata, []*RaftShard{shard}, 1*time.Second)
	require.Equal(t, defaultRaftTimeout, group.writeTimeout)
}
