// Package nodecall implements the broker-to-broker notification bus: a
// global ingress queue fans out to one channel per known node, each node's
// channel routes by partition key into a ring of workers, and each worker
// batches and retries RPC delivery.
package nodecall

import (
	"context"

	"github.com/robustmq/robustmq/pkg/types"
)

const (
	globalQueueCapacity = 10000
	nodeQueueCapacity   = 5000
	workerCount         = 10
	batchSize           = 100
	maxRetries          = 3
	retryBaseDelayMs    = 50
)

// NodeList is the abstraction Node-Call depends on to discover which
// broker nodes exist and where to reach them, breaking the cyclic
// reference with Broker Cache described in the design notes.
type NodeList interface {
	// Nodes returns the set of known broker node addresses (node-inner addr),
	// keyed by node id.
	Nodes() map[uint64]string
}

// Notifier is the abstraction the Raft Manager depends on to push
// fan-out notifications without importing this package directly.
type Notifier interface {
	Send(ctx context.Context, data types.NodeCallData) error
}

// Sender delivers one variant group's batch to one node.
// Concrete implementations dial through grpcpool and invoke the
// broker-common/broker-mqtt/journal-inner stubs in pkg/rpc.
type Sender interface {
	SendUpdateCache(ctx context.Context, addr string, batch []types.NodeCallData) error
	SendDeleteSession(ctx context.Context, addr string, batch []types.NodeCallData) error
	SendLastWill(ctx context.Context, addr string, batch []types.NodeCallData) error
	SendUpdateJournalCache(ctx context.Context, addr string, batch []types.NodeCallData) error
}
