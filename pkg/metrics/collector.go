package metrics

import "time"

// RaftStatsSource is implemented by pkg/raftgroup's MultiRaftManager. Kept as
// a small interface here (rather than importing pkg/raftgroup) so this
// package never depends on the components it instruments.
type RaftStatsSource interface {
	ShardStats() map[string]RaftShardStats
}

// RaftShardStats is the subset of a shard's state the collector samples.
type RaftShardStats struct {
	IsLeader     bool
	LastIndex    uint64
	AppliedIndex uint64
}

// PoolStatsSource is implemented by pkg/grpcpool's ClientPool.
type PoolStatsSource interface {
	AllHealth() []PoolHealthSample
}

// PoolHealthSample mirrors types.PoolHealth without importing pkg/types,
// keeping this package dependency-free of the rest of the module.
type PoolHealthSample struct {
	Service     string
	Addr        string
	InUse       uint64
	Idle        uint64
}

// Collector periodically samples Raft and connection-pool state into the
// registered Prometheus gauges.
type Collector struct {
	raft   RaftStatsSource
	pool   PoolStatsSource
	stopCh chan struct{}
}

// NewCollector builds a collector. raft and pool may be nil; a nil source
// is skipped on every sample (a broker process passes nil for both).
func NewCollector(raft RaftStatsSource, pool PoolStatsSource) *Collector {
	return &Collector{raft: raft, pool: pool, stopCh: make(chan struct{})}
}

// Start begins the sampling loop on a 15s interval.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts the sampling loop.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectRaft()
	c.collectPool()
}

func (c *Collector) collectRaft() {
	if c.raft == nil {
		return
	}
	for shardID, stats := range c.raft.ShardStats() {
		if stats.IsLeader {
			RaftIsLeader.WithLabelValues(shardID).Set(1)
		} else {
			RaftIsLeader.WithLabelValues(shardID).Set(0)
		}
		RaftLastLogIndex.WithLabelValues(shardID).Set(float64(stats.LastIndex))
		RaftAppliedIndex.WithLabelValues(shardID).Set(float64(stats.AppliedIndex))
		lag := stats.LastIndex - stats.AppliedIndex
		if stats.LastIndex < stats.AppliedIndex {
			lag = 0
		}
		RaftApplyLag.WithLabelValues(shardID).Set(float64(lag))
	}
}

func (c *Collector) collectPool() {
	if c.pool == nil {
		return
	}
	for _, h := range c.pool.AllHealth() {
		PoolConnectionsInUse.WithLabelValues(h.Service, h.Addr).Set(float64(h.InUse))
		PoolConnectionsIdle.WithLabelValues(h.Service, h.Addr).Set(float64(h.Idle))
	}
}
