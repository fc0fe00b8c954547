package cluster

import (
	"sync"
	"time"

	"github.com/robustmq/robustmq/pkg/metrics"
	"github.com/robustmq/robustmq/pkg/types"
)

type registryEntry struct {
	node          types.BrokerNode
	lastHeartbeat time.Time
}

// Registry is the meta service's in-memory directory of registered
// broker nodes and when each was last heard from. It also implements
// nodecall.NodeList, so the Node-Call fan-out pipeline can address every
// known node without this package importing nodecall.
type Registry struct {
	mu    sync.RWMutex
	nodes map[uint64]registryEntry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[uint64]registryEntry)}
}

// Register adds or replaces node and resets its heartbeat clock.
func (r *Registry) Register(node types.BrokerNode) {
	r.mu.Lock()
	_, existed := r.nodes[node.NodeID]
	r.nodes[node.NodeID] = registryEntry{node: node, lastHeartbeat: time.Now()}
	r.mu.Unlock()
	if !existed {
		metrics.BrokerNodesTotal.Inc()
	}
}

// Touch records a heartbeat for nodeID. Reports false if nodeID is not
// currently registered.
func (r *Registry) Touch(nodeID uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.nodes[nodeID]
	if !ok {
		return false
	}
	entry.lastHeartbeat = time.Now()
	r.nodes[nodeID] = entry
	return true
}

// Remove deletes nodeID from the registry.
func (r *Registry) Remove(nodeID uint64) {
	r.mu.Lock()
	_, existed := r.nodes[nodeID]
	delete(r.nodes, nodeID)
	r.mu.Unlock()
	if existed {
		metrics.BrokerNodesTotal.Dec()
	}
}

// Get looks up a node by id.
func (r *Registry) Get(nodeID uint64) (types.BrokerNode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.nodes[nodeID]
	return e.node, ok
}

// Nodes implements nodecall.NodeList: every registered node's inner
// (node-to-node) address, keyed by node id.
func (r *Registry) Nodes() map[uint64]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[uint64]string, len(r.nodes))
	for id, e := range r.nodes {
		out[id] = e.node.NodeInnerAddr
	}
	return out
}

// NodeIDByAddr reverse-looks-up a node id from its inner address. Used to
// render a Raft shard's leader address as a node id for get_cluster_status.
func (r *Registry) NodeIDByAddr(addr string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, e := range r.nodes {
		if e.node.NodeInnerAddr == addr {
			return id
		}
	}
	return 0
}

// StaleSince returns the ids of every node whose last heartbeat predates cutoff.
func (r *Registry) StaleSince(cutoff time.Time) []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stale []uint64
	for id, e := range r.nodes {
		if e.lastHeartbeat.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	return stale
}
