/*
Package metrics provides Prometheus metrics collection and exposition for
the meta-service and broker processes.

Metrics are registered at package init with zero values so dashboards never
show a gap before the first sample, following Prometheus best practice.
Categories: cluster/broker-cache state, Raft shard health and apply
latency, gRPC connection pool saturation, Node-Call dispatch/drop counts,
delay-task schedule latency, and storage-adapter write latency.

Collector periodically samples state that isn't naturally push-based (Raft
shard stats, pool connection counts) through small interfaces so this
package stays free of a dependency on pkg/raftgroup or pkg/grpcpool.
*/
package metrics
