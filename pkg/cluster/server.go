package cluster

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/robustmq/robustmq/pkg/raftgroup"
	"github.com/robustmq/robustmq/pkg/rpc"
	"github.com/robustmq/robustmq/pkg/types"
)

// MetaServer serves the cluster-membership quarter of rpc.MetaServiceServer:
// register_node, unregister_node, heartbeat, and get_cluster_status.
// The remaining methods (get_resource_config, commit_offset,
// get_offset_by_group) are a storage-adapter concern; a full
// rpc.MetaServiceServer is assembled by composing MetaServer with that
// component at the binary's wiring layer.
type MetaServer struct {
	registry *Registry
	raft     *raftgroup.MultiRaftManager
}

// NewMetaServer builds a MetaServer backed by registry and raft.
func NewMetaServer(registry *Registry, raft *raftgroup.MultiRaftManager) *MetaServer {
	return &MetaServer{registry: registry, raft: raft}
}

// RegisterNode replicates the node through the metadata Raft group, then
// adds it to the local Registry once the write is linearized.
func (s *MetaServer) RegisterNode(ctx context.Context, req *rpc.RegisterNodeRequest) (*rpc.RegisterNodeResponse, error) {
	node := types.BrokerNode{
		NodeID:        req.NodeID,
		NodeIP:        req.NodeIP,
		NodeInnerAddr: req.NodeInnerAddr,
		ExternAddr:    req.ExternAddr,
		Labels:        req.Labels,
		Extend:        req.Extend,
	}
	if req.RegisterTime != nil {
		node.StartTime = req.RegisterTime.AsTime()
	}

	value, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("cluster: marshal node %d: %w", req.NodeID, err)
	}
	if err := s.raft.WriteMetadata(ctx, types.StorageData{
		DataType:  types.StorageDataTypeSet,
		Namespace: types.NamespaceBroker,
		Key:       fmt.Sprintf("%d", req.NodeID),
		Value:     value,
	}); err != nil {
		return nil, fmt.Errorf("cluster: register_node %d: %w", req.NodeID, err)
	}

	s.registry.Register(node)
	return &rpc.RegisterNodeResponse{}, nil
}

// UnregisterNode removes node from the metadata Raft group and the Registry.
func (s *MetaServer) UnregisterNode(ctx context.Context, req *rpc.UnregisterNodeRequest) (*rpc.UnregisterNodeResponse, error) {
	if err := s.raft.WriteMetadata(ctx, types.StorageData{
		DataType:  types.StorageDataTypeDelete,
		Namespace: types.NamespaceBroker,
		Key:       fmt.Sprintf("%d", req.NodeID),
	}); err != nil {
		return nil, fmt.Errorf("cluster: unregister_node %d: %w", req.NodeID, err)
	}
	s.registry.Remove(req.NodeID)
	return &rpc.UnregisterNodeResponse{}, nil
}

// Heartbeat records liveness for an already-registered node. A node the
// Registry doesn't know about gets an error whose text names the node as
// not existing, the exact signal the broker-side Controller watches for
// to trigger re-registration.
func (s *MetaServer) Heartbeat(ctx context.Context, req *rpc.HeartbeatRequest) (*rpc.HeartbeatResponse, error) {
	if !s.registry.Touch(req.NodeID) {
		return nil, fmt.Errorf("Node %d does not exist", req.NodeID)
	}
	return &rpc.HeartbeatResponse{}, nil
}

// GetClusterStatus reports each Raft shard's leadership as seen right now.
// A shard with no elected leader reports RunningState "Err" and
// CurrentLeader 0; otherwise CurrentLeader is the leader's node id,
// resolved from its Raft transport address via the Registry.
func (s *MetaServer) GetClusterStatus(ctx context.Context, req *rpc.GetClusterStatusRequest) (*rpc.GetClusterStatusResponse, error) {
	_, leaders := s.raft.ClusterReady()
	shards := make(map[string]rpc.ShardStatus, len(leaders))
	for name, addr := range leaders {
		status := rpc.ShardStatus{RunningState: "Err"}
		if addr != "" {
			status.RunningState = "Ok"
			status.CurrentLeader = s.registry.NodeIDByAddr(addr)
		}
		shards[name] = status
	}
	return &rpc.GetClusterStatusResponse{Shards: shards}, nil
}
