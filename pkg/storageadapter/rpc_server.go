package storageadapter

import (
	"context"

	"github.com/robustmq/robustmq/pkg/kv"
	"github.com/robustmq/robustmq/pkg/rpc"
	"github.com/robustmq/robustmq/pkg/types"
)

// ResourceServer serves the storage quarter of rpc.MetaServiceServer:
// get_resource_config, commit_offset, get_offset_by_group. It is meant to
// be composed with cluster.MetaServer (which serves the membership
// quarter) into one type satisfying the full interface, at the binary's
// wiring layer.
//
// get_resource_config reads directly off the engine backing the metadata
// Raft group's KVApplier, under the same scoped key every Set/Delete
// through that shard writes to, so a read always reflects the latest
// linearized write once the proposing RPC has returned.
type ResourceServer struct {
	engine        kv.Engine
	adapter       *Adapter
	metadataScope string // must match the scope passed to NewKVApplier for the metadata shard
}

// NewResourceServer builds a ResourceServer reading resource config off
// engine (scoped the same way as the metadata shard's KVApplier) and
// offsets off adapter.
func NewResourceServer(engine kv.Engine, adapter *Adapter, metadataScope string) *ResourceServer {
	return &ResourceServer{engine: engine, adapter: adapter, metadataScope: metadataScope}
}

func (s *ResourceServer) scopedKey(key string) string { return s.metadataScope + "/" + key }

// GetResourceConfig returns the most recently committed value for
// (namespace, key), or an empty value if nothing has ever been set.
func (s *ResourceServer) GetResourceConfig(ctx context.Context, req *rpc.GetResourceConfigRequest) (*rpc.GetResourceConfigResponse, error) {
	value, err := s.engine.Get(req.Namespace, s.scopedKey(req.Key))
	if err != nil {
		if err == kv.ErrNotFound {
			return &rpc.GetResourceConfigResponse{}, nil
		}
		return nil, err
	}
	return &rpc.GetResourceConfigResponse{Value: value}, nil
}

// CommitOffset persists a consumer group's per-shard read offsets.
func (s *ResourceServer) CommitOffset(ctx context.Context, req *rpc.CommitOffsetRequest) (*rpc.CommitOffsetResponse, error) {
	group := types.RaftGroupName(req.Group)
	if err := s.adapter.CommitOffset(group, req.Namespace, req.ShardOffsets); err != nil {
		return nil, err
	}
	return &rpc.CommitOffsetResponse{}, nil
}

// GetOffsetByGroup returns every shard offset committed under a group.
func (s *ResourceServer) GetOffsetByGroup(ctx context.Context, req *rpc.GetOffsetByGroupRequest) (*rpc.GetOffsetByGroupResponse, error) {
	offsets, err := s.adapter.GetOffsetByGroup(types.RaftGroupName(req.Group))
	if err != nil {
		return nil, err
	}
	out := make([]rpc.ShardOffsetWire, 0, len(offsets))
	for _, o := range offsets {
		out = append(out, rpc.ShardOffsetWire{Namespace: o.Namespace, Shard: o.Shard, Offset: o.Offset})
	}
	return &rpc.GetOffsetByGroupResponse{Offsets: out}, nil
}
