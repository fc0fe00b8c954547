package raftgroup

import (
	"context"
	"testing"
	"time"

	"github.com/robustmq/robustmq/pkg/types"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *MultiRaftManager {
	t.Helper()
	metaShard := bootstrapSingleShard(t, types.RaftGroupMetadata, 0, &nopApplier{})
	offsetShard := bootstrapSingleShard(t, types.RaftGroupOffset, 0, &nopApplier{})
	dataShard := bootstrapSingleShard(t, types.RaftGroupData, 0, &nopApplier{})

	metadata := NewRaftGroup(types.RaftGroupMetadata, []*RaftShard{metaShard}, 30*time.Second)
	offset := NewRaftGroup(types.RaftGroupOffset, []*RaftShard{offsetShard}, 30*time.Second)
	data := NewRaftGroup(types.RaftGroupData, []*RaftShard{dataShard}, 30*time.Second)

	m := NewMultiRaftManager(metadata, offset, data)
	t.Cleanup(m.Shutdown)
	return m
}

func TestMultiRaftManager_GetRaftNodeAliases(t *testing.T) {
	m := newTestManager(t)

	for _, alias := range []string{"metadata", "meta", "metadata_0"} {
		s, err := m.GetRaftNode(alias)
		require.NoError(t, err)
		require.Equal(t, "metadata_0", s.name)
	}

	for _, alias := range []string{"data", "mqtt", "data_0"} {
		s, err := m.GetRaftNode(alias)
		require.NoError(t, err)
		require.Equal(t, "data_0", s.name)
	}

	_, err := m.GetRaftNode("nonexistent_7")
	require.Error(t, err)
}

func TestMultiRaftManager_WriteMetadataRoutesToMetadataShard(t *testing.T) {
	m := newTestManager(t)

	err := m.WriteMetadata(context.Background(), types.StorageData{
		DataType: types.StorageDataTypeSet, Namespace: "broker", Key: "n1", Value: []byte("x"),
	})
	require.NoError(t, err)
}

func TestMultiRaftManager_ClusterReadyOnceAllShardsHaveLeader(t *testing.T) {
	m := newTestManager(t)

	ready, leaders := m.ClusterReady()
	require.True(t, ready)
	require.Len(t, leaders, 3)
}

func TestMultiRaftManager_ShardStatsSatisfiesMetricsInterface(t *testing.T) {
	m := newTestManager(t)

	stats := m.ShardStats()
	require.Len(t, stats, 3)
	require.Contains(t, stats, "metadata_0")
	require.True(t, stats["metadata_0"].IsLeader)
}
