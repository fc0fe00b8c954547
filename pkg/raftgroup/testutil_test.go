package raftgroup

import (
	"net"
	"testing"
	"time"

	"github.com/hashicorp/raft"
	"github.com/robustmq/robustmq/pkg/types"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

type nopApplier struct{ applied []types.StorageData }

func (a *nopApplier) Apply(data types.StorageData) (interface{}, error) {
	a.applied = append(a.applied, data)
	return nil, nil
}

func bootstrapSingleShard(t *testing.T, group types.RaftGroupName, index int, applier Applier) *RaftShard {
	t.Helper()
	cfg := ShardConfig{
		Group:    group,
		Index:    index,
		NodeID:   1,
		BindAddr: freeAddr(t),
		DataDir:  t.TempDir(),
	}
	shard, err := NewRaftShard(cfg, applier, nil)
	require.NoError(t, err)

	err = shard.Init([]raft.Server{{
		ID:      raft.ServerID("1"),
		Address: raft.ServerAddress(cfg.BindAddr),
	}})
	require.NoError(t, err)

	require.Eventually(t, shard.IsLeader, 5*time.Second, 20*time.Millisecond)
	t.Cleanup(func() { _ = shard.Shutdown() })
	return shard
}
