package brokercache

import (
	"fmt"

	"github.com/robustmq/robustmq/pkg/types"
)

// Resource kinds the cache tracks, matching the resource field
// update_cache/update_journal_cache notifications carry.
const (
	ResourceNode                 = "Node"
	ResourceSession              = "Session"
	ResourceTopic                = "Topic"
	ResourceSubscribe            = "Subscribe"
	ResourceUser                 = "User"
	ResourceConnector            = "Connector"
	ResourceSchema               = "Schema"
	ResourceSchemaResource       = "SchemaResource"
	ResourceClusterResourceConfig = "ClusterResourceConfig"
	ResourceShard                = "Shard"
	ResourceSegment              = "Segment"
	ResourceSegmentMeta          = "SegmentMeta"
	// resourceLastWill is internal: it isn't a wire resource kind of its
	// own, but pairs with Session so the delay-task manager can look up
	// and clear a client's last-will payload without a second cache type.
	resourceLastWill = "LastWill"
)

var knownResources = []string{
	ResourceNode, ResourceSession, ResourceTopic, ResourceSubscribe,
	ResourceUser, ResourceConnector, ResourceSchema, ResourceSchemaResource,
	ResourceClusterResourceConfig, ResourceShard, ResourceSegment, ResourceSegmentMeta,
	resourceLastWill,
}

// Cache is the broker-local mirror of cluster-wide metadata: one
// sharded map per resource kind, kept current by Apply.
type Cache struct {
	byResource map[string]*shardedMap
}

// New builds an empty Cache with every known resource kind pre-created.
func New() *Cache {
	c := &Cache{byResource: make(map[string]*shardedMap, len(knownResources))}
	for _, kind := range knownResources {
		c.byResource[kind] = newShardedMap(defaultShardCount)
	}
	return c
}

// Apply applies one update_cache/update_journal_cache notification:
// "set" stores payload.Data under payload.Key, "delete" removes it.
// An unknown resource kind is an error, since the sender and cache must
// agree on the resource vocabulary.
func (c *Cache) Apply(payload types.UpdateCachePayload) error {
	shard, ok := c.byResource[payload.Resource]
	if !ok {
		return fmt.Errorf("brokercache: unknown resource kind %q", payload.Resource)
	}
	switch payload.Action {
	case "set":
		shard.set(payload.Key, payload.Data)
	case "delete":
		shard.delete(payload.Key)
	default:
		return fmt.Errorf("brokercache: unknown action %q for resource %q", payload.Action, payload.Resource)
	}
	return nil
}

// Get reads a raw cached value for a resource/key pair, as last applied.
func (c *Cache) Get(resource, key string) ([]byte, bool) {
	shard, ok := c.byResource[resource]
	if !ok {
		return nil, false
	}
	return shard.get(key)
}

// Set writes a value directly, bypassing the update_cache wire shape.
// Used for locally-originated state (e.g. this node's own session table)
// rather than fan-out notifications from other nodes.
func (c *Cache) Set(resource, key string, value []byte) {
	if shard, ok := c.byResource[resource]; ok {
		shard.set(key, value)
	}
}

// Delete removes a key directly, bypassing the update_cache wire shape.
func (c *Cache) Delete(resource, key string) {
	if shard, ok := c.byResource[resource]; ok {
		shard.delete(key)
	}
}

// Count returns how many entries a resource kind currently holds.
func (c *Cache) Count(resource string) int {
	shard, ok := c.byResource[resource]
	if !ok {
		return 0
	}
	return shard.count()
}

// Keys snapshots every key currently cached for a resource kind.
func (c *Cache) Keys(resource string) []string {
	shard, ok := c.byResource[resource]
	if !ok {
		return nil
	}
	return shard.keys()
}
