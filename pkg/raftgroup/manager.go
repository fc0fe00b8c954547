package raftgroup

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robustmq/robustmq/pkg/metrics"
	"github.com/robustmq/robustmq/pkg/types"
)

// MultiRaftManager owns the three named Raft groups this module replicates
// cluster state through: metadata (always 1 shard), offset (N shards), and
// data (M shards).
type MultiRaftManager struct {
	metadata *RaftGroup
	offset   *RaftGroup
	data     *RaftGroup

	byShard map[string]*RaftShard

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewMultiRaftManager wires three already-constructed groups and starts the
// 1s apply-lag metrics loop.
func NewMultiRaftManager(metadata, offset, data *RaftGroup) *MultiRaftManager {
	m := &MultiRaftManager{
		metadata: metadata,
		offset:   offset,
		data:     data,
		byShard:  make(map[string]*RaftShard),
		stopCh:   make(chan struct{}),
	}
	for _, g := range []*RaftGroup{metadata, offset, data} {
		for _, s := range g.Shards() {
			m.byShard[s.name] = s
		}
	}

	m.wg.Add(1)
	go m.reportApplyLag()
	return m
}

// WriteMetadata replicates data through the single-shard metadata group.
func (m *MultiRaftManager) WriteMetadata(ctx context.Context, data types.StorageData) error {
	return m.metadata.Write(ctx, "", data)
}

// WriteOffset hash-routes data by key through the offset group.
func (m *MultiRaftManager) WriteOffset(ctx context.Context, key string, data types.StorageData) error {
	return m.offset.Write(ctx, key, data)
}

// WriteData hash-routes data by key through the data group.
func (m *MultiRaftManager) WriteData(ctx context.Context, key string, data types.StorageData) error {
	return m.data.Write(ctx, key, data)
}

// GetRaftNode resolves a shard name, accepting both raw names
// ("offset_2") and the aliases "metadata"/"meta" -> "metadata_0" and
// "data"/"mqtt" -> the data group's first shard.
func (m *MultiRaftManager) GetRaftNode(shardName string) (*RaftShard, error) {
	switch shardName {
	case "metadata", "meta":
		shardName = "metadata_0"
	case "data", "mqtt":
		if len(m.data.Shards()) == 0 {
			return nil, fmt.Errorf("raftgroup: data group has no shards")
		}
		shardName = m.data.Shards()[0].name
	}

	if s, ok := m.byShard[shardName]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("raftgroup: unknown shard %q", shardName)
}

// ShardStats implements metrics.RaftStatsSource.
func (m *MultiRaftManager) ShardStats() map[string]metrics.RaftShardStats {
	out := make(map[string]metrics.RaftShardStats, len(m.byShard))
	for name, s := range m.byShard {
		status := s.Status()
		out[name] = metrics.RaftShardStats{
			IsLeader:     status.IsLeader,
			LastIndex:    status.LastIndex,
			AppliedIndex: status.AppliedIndex,
		}
	}
	return out
}

// ClusterReady reports whether every shard has a current leader, mirroring
// check_meta_service_status's readiness definition.
func (m *MultiRaftManager) ClusterReady() (bool, map[string]string) {
	leaders := make(map[string]string, len(m.byShard))
	ready := true
	for name, s := range m.byShard {
		addr := s.LeaderAddr()
		leaders[name] = addr
		if strings.TrimSpace(addr) == "" {
			ready = false
		}
	}
	return ready, leaders
}

func (m *MultiRaftManager) reportApplyLag() {
	defer m.wg.Done()
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for name, s := range m.byShard {
				status := s.Status()
				lag := uint64(0)
				if status.LastIndex > status.AppliedIndex {
					lag = status.LastIndex - status.AppliedIndex
				}
				metrics.RaftIsLeader.WithLabelValues(name).Set(boolToFloat(status.IsLeader))
				metrics.RaftLastLogIndex.WithLabelValues(name).Set(float64(status.LastIndex))
				metrics.RaftAppliedIndex.WithLabelValues(name).Set(float64(status.AppliedIndex))
				metrics.RaftApplyLag.WithLabelValues(name).Set(float64(lag))
			}
		case <-m.stopCh:
			return
		}
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Shutdown stops the apply-lag loop and every shard across all three groups.
func (m *MultiRaftManager) Shutdown() {
	close(m.stopCh)
	m.wg.Wait()
	m.metadata.Shutdown()
	m.offset.Shutdown()
	m.data.Shutdown()
}
