package cluster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robustmq/robustmq/pkg/log"
	"github.com/robustmq/robustmq/pkg/metrics"
	"github.com/robustmq/robustmq/pkg/rpc"
)

func (c *Controller) heartbeatLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.reportHeartbeat()
		case <-c.stopCh:
			return
		}
	}
}

// reportHeartbeat sends a single heartbeat. A timeout is logged as the
// meta service possibly being unresponsive, without re-registering (the
// node may well still be known there); a "does not exist" rejection
// means the meta service forgot this node, so it re-registers.
func (c *Controller) reportHeartbeat() {
	ctx, cancel := context.WithTimeout(context.Background(), heartbeatTimeout)
	defer cancel()

	_, err := c.client.Heartbeat(ctx, &rpc.HeartbeatRequest{
		Envelope: rpc.Envelope{ClusterName: c.clusterName},
		NodeID:   c.node.NodeID,
	})
	metrics.HeartbeatsSentTotal.Inc()
	if err == nil {
		return
	}

	metrics.HeartbeatFailuresTotal.Inc()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Warn(fmt.Sprintf("cluster: heartbeat to meta service timed out after %s, meta service may be unresponsive", heartbeatTimeout))
		return
	}

	if strings.Contains(err.Error(), "does not exist") {
		log.Info(fmt.Sprintf("cluster: node %d not recognized by meta service, re-registering", c.node.NodeID))
		if rerr := c.Register(context.Background()); rerr != nil {
			log.Error(fmt.Sprintf("cluster: re-register after heartbeat rejection failed: %v", rerr))
		}
		return
	}

	log.Warn(fmt.Sprintf("cluster: heartbeat failed: %v", err))
}
