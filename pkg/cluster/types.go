// Package cluster implements broker registration, heartbeating, and
// meta-service-side node liveness for the RobustMQ control plane: the
// broker-side Controller registers a node and keeps it alive, while the
// meta-service-side Registry, MetaServer, and LivenessMonitor track which
// nodes are live and evict the ones that go silent.
package cluster

import (
	"context"

	"google.golang.org/grpc"

	"github.com/robustmq/robustmq/pkg/rpc"
)

// MetaClient is the subset of rpc.MetaServiceClient the broker-side
// controller needs. Satisfied by rpc.NewMetaServiceClient(conn) directly;
// narrowed here so tests can fake just these three calls.
type MetaClient interface {
	RegisterNode(ctx context.Context, in *rpc.RegisterNodeRequest, opts ...grpc.CallOption) (*rpc.RegisterNodeResponse, error)
	Heartbeat(ctx context.Context, in *rpc.HeartbeatRequest, opts ...grpc.CallOption) (*rpc.HeartbeatResponse, error)
	GetClusterStatus(ctx context.Context, in *rpc.GetClusterStatusRequest, opts ...grpc.CallOption) (*rpc.GetClusterStatusResponse, error)
}
