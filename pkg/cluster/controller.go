package cluster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/robustmq/robustmq/pkg/rpc"
	"github.com/robustmq/robustmq/pkg/types"
)

const (
	heartbeatInterval = 3 * time.Second
	heartbeatTimeout  = 3 * time.Second
	registerTimeout   = 10 * time.Second
)

// Controller is a broker node's view of cluster membership: it registers
// the node with the metadata service, keeps it alive with a heartbeat
// loop, and can block until the cluster is ready to serve.
type Controller struct {
	client      MetaClient
	clusterName string
	node        types.BrokerNode

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewController builds a Controller for node, talking to the metadata
// service through client.
func NewController(client MetaClient, clusterName string, node types.BrokerNode) *Controller {
	return &Controller{
		client:      client,
		clusterName: clusterName,
		node:        node,
		stopCh:      make(chan struct{}),
	}
}

// Register sends register_node, blocking until the meta service
// acknowledges or the call times out.
func (c *Controller) Register(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, registerTimeout)
	defer cancel()

	_, err := c.client.RegisterNode(ctx, &rpc.RegisterNodeRequest{
		Envelope:      rpc.Envelope{ClusterName: c.clusterName},
		NodeID:        c.node.NodeID,
		NodeIP:        c.node.NodeIP,
		NodeInnerAddr: c.node.NodeInnerAddr,
		ExternAddr:    c.node.ExternAddr,
		Labels:        c.node.Labels,
		Extend:        c.node.Extend,
		RegisterTime:  timestamppb.New(c.node.StartTime),
	})
	if err != nil {
		return fmt.Errorf("cluster: register_node %d: %w", c.node.NodeID, err)
	}
	return nil
}

// StartHeartbeatLoop starts the background heartbeat goroutine. Call once,
// after a successful Register.
func (c *Controller) StartHeartbeatLoop() {
	c.wg.Add(1)
	go c.heartbeatLoop()
}

// Shutdown stops the heartbeat loop and waits for it to exit.
func (c *Controller) Shutdown() {
	close(c.stopCh)
	c.wg.Wait()
}
