// Package brokercache implements the broker-local cache every node keeps
// in memory so reads (session lookups, topic/subscribe metadata,
// cluster resource config, journal shard/segment placement) never need a
// round trip to the metadata service. It is kept current by applying the
// update_cache/update_journal_cache notifications the Node-Call pipeline
// delivers.
package brokercache

import (
	"hash/maphash"
	"sync"
)

// defaultShardCount is the stripe count each resource's map uses, a
// power of 2 so the hash mask is a cheap bitwise AND.
const defaultShardCount = 16

// shardedMap is a concurrent string-keyed byte-value map striped across
// a fixed number of shards to reduce lock contention under concurrent
// cache updates.
type shardedMap struct {
	shards    []*mapShard
	shardMask uint64
	seed      maphash.Seed
}

type mapShard struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func newShardedMap(shardCount int) *shardedMap {
	if shardCount <= 0 || shardCount&(shardCount-1) != 0 {
		shardCount = defaultShardCount
	}
	m := &shardedMap{
		shards:    make([]*mapShard, shardCount),
		shardMask: uint64(shardCount - 1),
		seed:      maphash.MakeSeed(),
	}
	for i := range m.shards {
		m.shards[i] = &mapShard{items: make(map[string][]byte)}
	}
	return m
}

func (m *shardedMap) shardFor(key string) *mapShard {
	return m.shards[maphash.String(m.seed, key)&m.shardMask]
}

func (m *shardedMap) get(key string) ([]byte, bool) {
	shard := m.shardFor(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	val, ok := shard.items[key]
	return val, ok
}

func (m *shardedMap) set(key string, value []byte) {
	shard := m.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	shard.items[key] = value
}

func (m *shardedMap) delete(key string) {
	shard := m.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	delete(shard.items, key)
}

func (m *shardedMap) count() int {
	n := 0
	for _, shard := range m.shards {
		shard.mu.RLock()
		n += len(shard.items)
		shard.mu.RUnlock()
	}
	return n
}

// keys returns a snapshot of every key currently stored, across all shards.
func (m *shardedMap) keys() []string {
	var out []string
	for _, shard := range m.shards {
		shard.mu.RLock()
		for k := range shard.items {
			out = append(out, k)
		}
		shard.mu.RUnlock()
	}
	return out
}
