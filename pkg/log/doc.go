/*
Package log provides structured logging for the meta-service and broker
processes using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper
functions for common logging patterns. All logs include timestamps and
support filtering by severity level for production debugging.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("raftgroup")                │          │
	│  │  - WithNodeID(42)                            │          │
	│  │  - WithShard("metadata_0")                   │          │
	│  │  - WithGroup("offset")                       │          │
	│  │  - WithTaskID("task-def456")                 │          │
	│  └────────────────────────────────────────────┘          │
	└────────────────────────────────────────────────────────┘

# Usage

Initializing the logger:

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: os.Stdout})

Component loggers:

	raftLog := log.WithComponent("raftgroup")
	raftLog.Info().Str("shard_id", "metadata_0").Msg("became leader")

	nodeLog := log.WithNodeID(node.NodeID)
	nodeLog.Warn().Msg("heartbeat missed")

# Integration points

This package is used by pkg/raftgroup (Raft lifecycle events), pkg/nodecall
(dispatch/retry/drop events), pkg/delaytask (recovery progress), pkg/cluster
(registration and heartbeat events), pkg/rpc (inbound request ids) and
pkg/brokercache (last-will delivery).

# Best practices

Use Info level in production, structured fields over string interpolation,
and never log secrets (node certificates or credentials are out of this
repository's scope, but request payloads can still carry user data — prefer
.Str("key", key) over embedding whole payloads).
*/
package log
