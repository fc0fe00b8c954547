package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robustmq/robustmq/pkg/rpc"
)

func TestMetaServer_RegisterThenHeartbeatSucceeds(t *testing.T) {
	raft := singleShardMultiRaft(t)
	registry := NewRegistry()
	s := NewMetaServer(registry, raft)

	_, err := s.RegisterNode(context.Background(), &rpc.RegisterNodeRequest{
		NodeID:        3,
		NodeInnerAddr: "10.0.0.3:9000",
	})
	require.NoError(t, err)

	_, err = s.Heartbeat(context.Background(), &rpc.HeartbeatRequest{NodeID: 3})
	require.NoError(t, err)
}

func TestMetaServer_HeartbeatUnknownNodeErrors(t *testing.T) {
	raft := singleShardMultiRaft(t)
	s := NewMetaServer(NewRegistry(), raft)

	_, err := s.Heartbeat(context.Background(), &rpc.HeartbeatRequest{NodeID: 99})
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestMetaServer_UnregisterRemovesFromRegistry(t *testing.T) {
	raft := singleShardMultiRaft(t)
	registry := NewRegistry()
	s := NewMetaServer(registry, raft)

	_, err := s.RegisterNode(context.Background(), &rpc.RegisterNodeRequest{NodeID: 4})
	require.NoError(t, err)

	_, err = s.UnregisterNode(context.Background(), &rpc.UnregisterNodeRequest{NodeID: 4})
	require.NoError(t, err)

	_, err = s.Heartbeat(context.Background(), &rpc.HeartbeatRequest{NodeID: 4})
	require.Error(t, err)
}

func TestMetaServer_GetClusterStatusReportsLeaderOnce(t *testing.T) {
	raft := singleShardMultiRaft(t)
	registry := NewRegistry()
	s := NewMetaServer(registry, raft)

	resp, err := s.GetClusterStatus(context.Background(), &rpc.GetClusterStatusRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Shards, 1)
	status, ok := resp.Shards["metadata_0"]
	require.True(t, ok)
	require.Equal(t, "Ok", status.RunningState)
}
