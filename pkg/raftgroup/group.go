package raftgroup

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync/atomic"
	"time"

	"github.com/robustmq/robustmq/pkg/log"
	"github.com/robustmq/robustmq/pkg/metrics"
	"github.com/robustmq/robustmq/pkg/types"
)

const slowWriteThreshold = 1 * time.Second

// RaftGroup owns N shards under one logical name and hash-routes writes by key.
type RaftGroup struct {
	name         types.RaftGroupName
	shards       []*RaftShard
	writeTimeout time.Duration
	shutdown     atomic.Bool
}

// NewRaftGroup wraps an already-constructed, already-initialized slice of
// shards. writeTimeout is the caller's raft_write_timeout_sec, floored at 30s.
func NewRaftGroup(name types.RaftGroupName, shards []*RaftShard, writeTimeout time.Duration) *RaftGroup {
	if writeTimeout < defaultRaftTimeout {
		writeTimeout = defaultRaftTimeout
	}
	return &RaftGroup{name: name, shards: shards, writeTimeout: writeTimeout}
}

// RouteShard computes which of N shards a key hashes to. An empty key
// always routes to shard 0, so the single-shard metadata group and
// intentionally-unkeyed writes are deterministic.
func RouteShard(key string, n int) int {
	if key == "" || n <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

// Write hash-routes data by key to one shard and replicates it through Raft,
// returning once the entry has committed or the group's write timeout elapses.
func (g *RaftGroup) Write(ctx context.Context, key string, data types.StorageData) error {
	if g.shutdown.Load() {
		return fmt.Errorf("raftgroup: group %s is shut down", g.name)
	}

	idx := RouteShard(key, len(g.shards))
	shard := g.shards[idx]

	start := time.Now()
	resultCh := make(chan error, 1)
	go func() {
		_, err := shard.Apply(data, g.writeTimeout)
		resultCh <- err
	}()

	select {
	case err := <-resultCh:
		elapsed := time.Since(start)
		if elapsed > slowWriteThreshold {
			log.Warn(fmt.Sprintf("raftgroup: slow write group=%s shard=%s elapsed=%s", g.name, shard.name, elapsed))
		}
		metrics.RaftApplyDuration.WithLabelValues(shard.name).Observe(elapsed.Seconds())
		if err != nil {
			metrics.RaftWriteFailuresTotal.WithLabelValues(string(g.name)).Inc()
			return err
		}
		return nil
	case <-ctx.Done():
		metrics.RaftWriteFailuresTotal.WithLabelValues(string(g.name)).Inc()
		return ctx.Err()
	case <-time.After(g.writeTimeout):
		metrics.RaftWriteFailuresTotal.WithLabelValues(string(g.name)).Inc()
		return fmt.Errorf("write %s timeout after %s, data_type=%s", g.name, g.writeTimeout, data.DataType)
	}
}

// Shards returns every shard in the group, in index order.
func (g *RaftGroup) Shards() []*RaftShard { return g.shards }

// Shutdown stops every shard in the group; errors are logged, not aggregated,
// since shutdown is best-effort.
func (g *RaftGroup) Shutdown() {
	g.shutdown.Store(true)
	for _, s := range g.shards {
		if err := s.Shutdown(); err != nil {
			log.Warn(fmt.Sprintf("raftgroup: group %s shard %s shutdown error: %v", g.name, s.name, err))
		}
	}
}
