package cluster

import (
	"net"
	"testing"
	"time"

	"github.com/hashicorp/raft"
	"github.com/stretchr/testify/require"

	"github.com/robustmq/robustmq/pkg/raftgroup"
	"github.com/robustmq/robustmq/pkg/types"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

type nopApplier struct{}

func (a *nopApplier) Apply(data types.StorageData) (interface{}, error) { return nil, nil }

// singleShardMultiRaft builds a *raftgroup.MultiRaftManager with one
// single-node, already-elected metadata shard, and empty offset/data
// groups. Enough for exercising MetaServer/LivenessMonitor's metadata
// writes and get_cluster_status's leader lookup.
func singleShardMultiRaft(t *testing.T) *raftgroup.MultiRaftManager {
	t.Helper()

	cfg := raftgroup.ShardConfig{
		Group:    types.RaftGroupMetadata,
		Index:    0,
		NodeID:   1,
		BindAddr: freeAddr(t),
		DataDir:  t.TempDir(),
	}
	shard, err := raftgroup.NewRaftShard(cfg, &nopApplier{}, nil)
	require.NoError(t, err)
	require.NoError(t, shard.Init([]raft.Server{{
		ID:      raft.ServerID("1"),
		Address: raft.ServerAddress(cfg.BindAddr),
	}}))
	require.Eventually(t, shard.IsLeader, 5*time.Second, 20*time.Millisecond)
	t.Cleanup(func() { _ = shard.Shutdown() })

	metadata := raftgroup.NewRaftGroup(types.RaftGroupMetadata, []*raftgroup.RaftShard{shard}, 30*time.Second)
	offset := raftgroup.NewRaftGroup(types.RaftGroupOffset, nil, 30*time.Second)
	data := raftgroup.NewRaftGroup(types.RaftGroupData, nil, 30*time.Second)

	m := raftgroup.NewMultiRaftManager(metadata, offset, data)
	t.Cleanup(m.Shutdown)
	return m
}
