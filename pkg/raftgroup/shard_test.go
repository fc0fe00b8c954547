package raftgroup

import (
	"testing"
	"time"

	"github.com/robustmq/robustmq/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestRaftShard_BootstrapElectsLeader(t *testing.T) {
	applier := &nopApplier{}
	shard := bootstrapSingleShard(t, types.RaftGroupMetadata, 0, applier)

	require.Equal(t, "metadata_0", shard.name)
	require.True(t, shard.IsLeader())
}

func TestRaftShard_ApplyInvokesApplier(t *testing.T) {
	applier := &nopApplier{}
	shard := bootstrapSingleShard(t, types.RaftGroupOffset, 0, applier)

	data := types.StorageData{DataType: types.StorageDataTypeSet, Namespace: "broker", Key: "k1", Value: []byte("v1")}
	_, err := shard.Apply(data, 5*time.Second)
	require.NoError(t, err)

	require.Len(t, applier.applied, 1)
	require.Equal(t, data, applier.applied[0])
}

func TestRaftShard_StatusReflectsAppliedIndex(t *testing.T) {
	applier := &nopApplier{}
	shard := bootstrapSingleShard(t, types.RaftGroupData, 0, applier)

	before := shard.Status().AppliedIndex

	_, err := shard.Apply(types.StorageData{DataType: types.StorageDataTypeSet, Namespace: "broker", Key: "a", Value: []byte("1")}, 5*time.Second)
	require.NoError(t, err)

	status := shard.Status()
	require.True(t, status.AppliedIndex > before)
	require.True(t, status.IsLeader)
	require.NotEmpty(t, status.LeaderAddr)
}

func TestShardConfig_RejectsElectionTimeoutOutOfRange(t *testing.T) {
	_, err := NewRaftShard(ShardConfig{
		Group: types.RaftGroupMetadata, Index: 0, NodeID: 1,
		BindAddr: freeAddr(t), DataDir: t.TempDir(), ElectionMs: 500,
	}, &nopApplier{}, nil)
	require.Error(t, err)
}
