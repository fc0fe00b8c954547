// Package raftgroup implements the sharded multi-Raft layer: one
// hashicorp/raft instance per shard (RaftShard), N shards hash-routed by
// key under a logical group name (RaftGroup), and the manager owning the
// three named groups (metadata, offset, data).
package raftgroup

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
	"github.com/robustmq/robustmq/pkg/log"
	"github.com/robustmq/robustmq/pkg/types"
)

const (
	heartbeatInterval   = 100 * time.Millisecond
	electionTimeoutMin  = 1000 * time.Millisecond
	electionTimeoutMax  = 2000 * time.Millisecond
	defaultRaftTimeout  = 30 * time.Second
	transportMaxPool    = 3
	transportTimeout    = 10 * time.Second
	snapshotRetainCount = 2
)

// ShardConfig configures one RaftShard.
type ShardConfig struct {
	Group      types.RaftGroupName
	Index      int
	NodeID     uint64
	BindAddr   string
	DataDir    string
	ElectionMs int // 0 uses the default within [1000, 2000]
}

// Name returns the shard's stable name, "{group}_{index}".
func (c ShardConfig) Name() string { return fmt.Sprintf("%s_%d", c.Group, c.Index) }

// RaftShard wraps one hashicorp/raft replica bound to a stable shard name.
type RaftShard struct {
	name  string
	group types.RaftGroupName
	index int

	raft          *raft.Raft
	fsm           *FSM
	logStore      raft.LogStore
	stableStore   raft.StableStore
	snapshotStore raft.SnapshotStore
	transport     *raft.NetworkTransport
}

// NewRaftShard opens (or creates) the shard's on-disk Raft state and
// constructs the underlying raft.Raft instance. It does not bootstrap or
// join a cluster; call Init for that.
func NewRaftShard(cfg ShardConfig, applier Applier, snapshotter Snapshotter) (*RaftShard, error) {
	election := cfg.ElectionMs
	if election == 0 {
		election = 1000
	}
	if election < 1000 || election > 2000 {
		return nil, fmt.Errorf("raftgroup: election_timeout must be within [1000,2000]ms, got %dms", election)
	}

	shardDir := filepath.Join(cfg.DataDir, cfg.Name())
	if err := os.MkdirAll(shardDir, 0o755); err != nil {
		return nil, fmt.Errorf("create shard data dir: %w", err)
	}

	raftConfig := raft.DefaultConfig()
	raftConfig.LocalID = raft.ServerID(fmt.Sprintf("%d", cfg.NodeID))
	raftConfig.HeartbeatTimeout = heartbeatInterval
	raftConfig.ElectionTimeout = time.Duration(election) * time.Millisecond
	raftConfig.LeaderLeaseTimeout = heartbeatInterval
	raftConfig.Logger = nil

	addr, err := net.ResolveTCPAddr("tcp", cfg.BindAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve bind addr: %w", err)
	}
	transport, err := raft.NewTCPTransport(cfg.BindAddr, addr, transportMaxPool, transportTimeout, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("create raft transport: %w", err)
	}

	snapshotStore, err := raft.NewFileSnapshotStore(shardDir, snapshotRetainCount, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("create snapshot store: %w", err)
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(shardDir, "raft-log.db"))
	if err != nil {
		return nil, fmt.Errorf("create raft log store: %w", err)
	}
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(shardDir, "raft-stable.db"))
	if err != nil {
		return nil, fmt.Errorf("create raft stable store: %w", err)
	}

	fsm := newFSM(applier, snapshotter)
	r, err := raft.NewRaft(raftConfig, fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return nil, fmt.Errorf("create raft instance: %w", err)
	}

	return &RaftShard{
		name:          cfg.Name(),
		group:         cfg.Group,
		index:         cfg.Index,
		raft:          r,
		fsm:           fsm,
		logStore:      logStore,
		stableStore:   stableStore,
		snapshotStore: snapshotStore,
		transport:     transport,
	}, nil
}

// Init bootstraps a fresh cluster over the full peer list iff this shard has
// no existing Raft state on disk; otherwise it no-ops, letting the shard
// rejoin via the existing log.
func (s *RaftShard) Init(peers []raft.Server) error {
	hasState, err := raft.HasExistingState(s.logStore, s.stableStore, s.snapshotStore)
	if err != nil {
		return fmt.Errorf("check existing raft state: %w", err)
	}
	if hasState {
		return nil
	}

	future := s.raft.BootstrapCluster(raft.Configuration{Servers: peers})
	if err := future.Error(); err != nil {
		return fmt.Errorf("bootstrap shard %s: %w", s.name, err)
	}
	return nil
}

// Apply submits data for replication and waits up to timeout for it to commit.
func (s *RaftShard) Apply(data types.StorageData, timeout time.Duration) (interface{}, error) {
	payload, err := json.Marshal(Command{Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal raft command: %w", err)
	}

	future := s.raft.Apply(payload, timeout)
	if err := future.Error(); err != nil {
		return nil, err
	}
	if resp := future.Response(); resp != nil {
		if applyErr, ok := resp.(error); ok && applyErr != nil {
			return nil, applyErr
		}
		return resp, nil
	}
	return nil, nil
}

// AddVoter adds a new member to this shard's Raft configuration. Only the leader may call this.
func (s *RaftShard) AddVoter(nodeID uint64, addr string) error {
	if !s.IsLeader() {
		return fmt.Errorf("raftgroup: shard %s is not leader, current leader %s", s.name, s.LeaderAddr())
	}
	future := s.raft.AddVoter(raft.ServerID(fmt.Sprintf("%d", nodeID)), raft.ServerAddress(addr), 0, transportTimeout)
	return future.Error()
}

// RemoveServer removes a member from this shard's Raft configuration.
func (s *RaftShard) RemoveServer(nodeID uint64) error {
	if !s.IsLeader() {
		return fmt.Errorf("raftgroup: shard %s is not leader", s.name)
	}
	future := s.raft.RemoveServer(raft.ServerID(fmt.Sprintf("%d", nodeID)), 0, transportTimeout)
	return future.Error()
}

// IsLeader reports whether this replica currently holds shard leadership.
func (s *RaftShard) IsLeader() bool { return s.raft.State() == raft.Leader }

// LeaderAddr returns the current leader's transport address, or "" if unknown.
func (s *RaftShard) LeaderAddr() string { return string(s.raft.Leader()) }

// Status returns a snapshot of this shard's Raft state.
func (s *RaftShard) Status() types.RaftShardStatus {
	var peers []string
	if future := s.raft.GetConfiguration(); future.Error() == nil {
		for _, srv := range future.Configuration().Servers {
			peers = append(peers, string(srv.ID))
		}
	}

	return types.RaftShardStatus{
		ShardID:      s.name,
		Group:        s.group,
		Index:        s.index,
		IsLeader:     s.IsLeader(),
		LeaderAddr:   s.LeaderAddr(),
		LastIndex:    s.raft.LastIndex(),
		AppliedIndex: s.raft.AppliedIndex(),
		Peers:        peers,
	}
}

// Shutdown stops this shard's Raft instance. Idempotent and best-effort.
func (s *RaftShard) Shutdown() error {
	future := s.raft.Shutdown()
	if err := future.Error(); err != nil {
		log.Warn(fmt.Sprintf("raftgroup: shard %s shutdown returned error: %v", s.name, err))
		return err
	}
	return nil
}
