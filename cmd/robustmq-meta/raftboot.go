package main

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"time"

	"github.com/hashicorp/raft"

	"github.com/robustmq/robustmq/pkg/kv"
	"github.com/robustmq/robustmq/pkg/raftgroup"
	"github.com/robustmq/robustmq/pkg/storageadapter"
	"github.com/robustmq/robustmq/pkg/types"
)

const leaderElectionWait = 10 * time.Second

// raftPortBase shifts every shard's Raft transport off of meta_addrs' own
// inner-RPC port; groupPortOffset then further separates the three
// groups, and the shard index separates shards within a group.
const raftPortBase = 1000

// passthroughApplier backs the data Raft group's shards. The journal
// engine that would own this group's real state machine is an external
// collaborator, so this group exists to be wired and replicated, not to
// interpret what it carries.
type passthroughApplier struct{}

func (passthroughApplier) Apply(data types.StorageData) (interface{}, error) { return nil, nil }

// peerShardAddr derives the Raft bind address node id's shard index of a
// group binds to, purely as a function of that node's meta_addrs entry:
// every node in the cluster computes the same address for any peer this
// way, with no extra coordination needed.
func peerShardAddr(metaAddr string, groupPortOffset, index int) (string, error) {
	host, portStr, err := net.SplitHostPort(metaAddr)
	if err != nil {
		return "", fmt.Errorf("parse meta addr %q: %w", metaAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", fmt.Errorf("parse meta addr %q port: %w", metaAddr, err)
	}
	return net.JoinHostPort(host, strconv.Itoa(port+raftPortBase+groupPortOffset+index)), nil
}

func sortedNodeIDs(metaAddrs map[uint64]string) []uint64 {
	ids := make([]uint64, 0, len(metaAddrs))
	for id := range metaAddrs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// bootstrapGroup builds and bootstraps count shards of group, one
// hashicorp/raft instance per shard per node listed in metaAddrs, so the
// group forms the multi-node cluster meta_addrs describes rather than a
// lone single-voter instance. Every node calls this with the same
// metaAddrs and group/count, so every node computes an identical peer
// list and Init (which only bootstraps state that doesn't already exist
// on disk) converges to one cluster.
func bootstrapGroup(group types.RaftGroupName, count int, nodeID uint64, metaAddrs map[uint64]string, groupPortOffset int, dataDir string, newApplier func(index int) raftgroup.Applier) ([]*raftgroup.RaftShard, error) {
	if _, ok := metaAddrs[nodeID]; !ok {
		return nil, fmt.Errorf("bootstrap %s: this node's id %d has no meta_addrs entry", group, nodeID)
	}
	ids := sortedNodeIDs(metaAddrs)

	shards := make([]*raftgroup.RaftShard, 0, count)
	for i := 0; i < count; i++ {
		peers := make([]raft.Server, 0, len(ids))
		var ownBindAddr string
		for _, id := range ids {
			addr, err := peerShardAddr(metaAddrs[id], groupPortOffset, i)
			if err != nil {
				return nil, fmt.Errorf("bootstrap %s shard %d: peer %d: %w", group, i, id, err)
			}
			peers = append(peers, raft.Server{
				ID:      raft.ServerID(strconv.FormatUint(id, 10)),
				Address: raft.ServerAddress(addr),
			})
			if id == nodeID {
				ownBindAddr = addr
			}
		}

		cfg := raftgroup.ShardConfig{
			Group:    group,
			Index:    i,
			NodeID:   nodeID,
			BindAddr: ownBindAddr,
			DataDir:  dataDir,
		}
		shard, err := raftgroup.NewRaftShard(cfg, newApplier(i), nil)
		if err != nil {
			return nil, fmt.Errorf("bootstrap %s shard %d: %w", group, i, err)
		}
		if err := shard.Init(peers); err != nil {
			return nil, fmt.Errorf("init %s shard %d: %w", group, i, err)
		}
		shards = append(shards, shard)
	}

	// Every node waits for its shards to learn of a leader, not
	// necessarily become one themselves: with multiple voters, exactly
	// one node's replica wins the election per shard.
	deadline := time.Now().Add(leaderElectionWait)
	for _, shard := range shards {
		for shard.LeaderAddr() == "" {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("%s shard %s did not elect a leader within %s", group, shard.Status().ShardID, leaderElectionWait)
			}
			time.Sleep(20 * time.Millisecond)
		}
	}
	return shards, nil
}

// Port offsets separating the three groups' Raft transports from each
// other, added on top of raftPortBase.
const (
	metadataPortOffset = 0
	offsetPortOffset   = 100
	dataPortOffset     = 200
)

// metadataScope is the kv key-space prefix the metadata group's sole
// shard scopes its sets/deletes under, shared with storageadapter's
// ResourceServer so reads see the same keys writes produced.
const metadataScope = "raft/metadata_0"

func metadataApplier(engine kv.Engine) func(index int) raftgroup.Applier {
	return func(index int) raftgroup.Applier { return raftgroup.NewKVApplier(engine, metadataScope) }
}

func offsetApplier(adapter *storageadapter.Adapter) func(index int) raftgroup.Applier {
	return func(index int) raftgroup.Applier {
		return raftgroup.NewStorageApplier(adapter, string(types.RaftGroupOffset), fmt.Sprintf("offset_%d", index))
	}
}

func dataApplier() func(index int) raftgroup.Applier {
	return func(index int) raftgroup.Applier { return passthroughApplier{} }
}
