package cluster

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/robustmq/robustmq/pkg/rpc"
	"github.com/robustmq/robustmq/pkg/types"
)

type fakeMetaClient struct {
	mu sync.Mutex

	registerCalls   int
	heartbeatCalls  int
	rejectNodeKnown bool // next Heartbeat call(s) return "does not exist"
	heartbeatErr    error

	statusResp *rpc.GetClusterStatusResponse
	statusErr  error
}

func (f *fakeMetaClient) RegisterNode(ctx context.Context, in *rpc.RegisterNodeRequest, opts ...grpc.CallOption) (*rpc.RegisterNodeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	f.rejectNodeKnown = false
	return &rpc.RegisterNodeResponse{}, nil
}

func (f *fakeMetaClient) Heartbeat(ctx context.Context, in *rpc.HeartbeatRequest, opts ...grpc.CallOption) (*rpc.HeartbeatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heartbeatCalls++
	if f.rejectNodeKnown {
		return nil, fmt.Errorf("Node %d does not exist", in.NodeID)
	}
	if f.heartbeatErr != nil {
		return nil, f.heartbeatErr
	}
	return &rpc.HeartbeatResponse{}, nil
}

func (f *fakeMetaClient) GetClusterStatus(ctx context.Context, in *rpc.GetClusterStatusRequest, opts ...grpc.CallOption) (*rpc.GetClusterStatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusResp, f.statusErr
}

func (f *fakeMetaClient) registerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registerCalls
}

func TestController_RegisterSendsNodeFields(t *testing.T) {
	client := &fakeMetaClient{}
	node := types.BrokerNode{NodeID: 7, NodeIP: "10.0.0.7", NodeInnerAddr: "10.0.0.7:9000", ExternAddr: "broker7.example:1883"}
	c := NewController(client, "default", node)

	require.NoError(t, c.Register(context.Background()))
	require.Equal(t, 1, client.registerCount())
}

func TestController_HeartbeatRejectionTriggersReRegister(t *testing.T) {
	client := &fakeMetaClient{}
	node := types.BrokerNode{NodeID: 9}
	c := NewController(client, "default", node)
	require.NoError(t, c.Register(context.Background()))

	// Registering clears the fake's rejection flag, so set it afterwards.
	client.mu.Lock()
	client.rejectNodeKnown = true
	client.mu.Unlock()

	c.reportHeartbeat()

	require.Eventually(t, func() bool { return client.registerCount() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestController_HeartbeatLoopRunsUntilShutdown(t *testing.T) {
	client := &fakeMetaClient{}
	c := NewController(client, "default", types.BrokerNode{NodeID: 1})
	c.StartHeartbeatLoop()
	defer c.Shutdown()

	require.Eventually(t, func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()
		return client.heartbeatCalls >= 1
	}, 2*heartbeatInterval+time.Second, 10*time.Millisecond)
}
