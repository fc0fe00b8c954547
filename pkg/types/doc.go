/*
Package types defines the core data structures shared across the metadata
service and broker processes: broker registration, Raft shard/group status,
storage mutations and records, shard offsets, delay tasks and node-call
fan-out payloads.

These types are deliberately transport-agnostic: pkg/cluster and
pkg/storageadapter convert between them and pkg/rpc's wire messages,
pkg/storageadapter persists them through pkg/kv, and pkg/raftgroup carries
StorageData through Raft log entries.
*/
package types
