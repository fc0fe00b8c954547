package cluster

import (
	"context"
	"time"

	"github.com/robustmq/robustmq/pkg/rpc"
)

const clusterStatusPollInterval = 1 * time.Second

// WaitForClusterReady polls get_cluster_status once a second until every
// shard reports a current leader, or ctx ends first. There is no attempt
// cap: a cold cluster can take an arbitrary amount of time to elect its
// first leaders.
func (c *Controller) WaitForClusterReady(ctx context.Context) error {
	for {
		resp, err := c.client.GetClusterStatus(ctx, &rpc.GetClusterStatusRequest{
			Envelope: rpc.Envelope{ClusterName: c.clusterName},
		})
		if err == nil && clusterReady(resp) {
			return nil
		}

		select {
		case <-time.After(clusterStatusPollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func clusterReady(resp *rpc.GetClusterStatusResponse) bool {
	if len(resp.Shards) == 0 {
		return false
	}
	for _, s := range resp.Shards {
		if s.RunningState != "Ok" || s.CurrentLeader == 0 {
			return false
		}
	}
	return true
}
