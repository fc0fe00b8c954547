package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cluster / cache metrics
	BrokerNodesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "robustmq_broker_nodes_total",
			Help: "Total number of broker nodes registered with the cluster",
		},
	)

	MetaServiceStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "robustmq_meta_service_status",
			Help: "Meta service node liveness (1 = up, 0 = down/unknown) by node_id",
		},
		[]string{"node_id", "status"},
	)

	HeartbeatsSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "robustmq_heartbeats_sent_total",
			Help: "Total number of heartbeats sent by this broker node",
		},
	)

	HeartbeatFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "robustmq_heartbeat_failures_total",
			Help: "Total number of heartbeat RPC failures",
		},
	)

	// Raft metrics
	RaftIsLeader = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "robustmq_raft_is_leader",
			Help: "Whether this node is the Raft leader for the given shard (1 = leader, 0 = follower)",
		},
		[]string{"shard_id"},
	)

	RaftLastLogIndex = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "robustmq_raft_last_log_index",
			Help: "Current Raft log index by shard",
		},
		[]string{"shard_id"},
	)

	RaftAppliedIndex = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "robustmq_raft_applied_index",
			Help: "Last applied Raft log index by shard",
		},
		[]string{"shard_id"},
	)

	RaftApplyLag = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "robustmq_raft_apply_lag",
			Help: "Difference between last log index and applied index, by shard",
		},
		[]string{"shard_id"},
	)

	RaftApplyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "robustmq_raft_apply_duration_seconds",
			Help:    "Time taken for a Raft apply to return, by shard",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"shard_id"},
	)

	// gRPC connection pool metrics
	PoolConnectionsInUse = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "robustmq_grpc_pool_connections_in_use",
			Help: "Connections currently leased out, by service and address",
		},
		[]string{"service", "addr"},
	)

	PoolConnectionsIdle = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "robustmq_grpc_pool_connections_idle",
			Help: "Connections currently idle, by service and address",
		},
		[]string{"service", "addr"},
	)

	PoolAcquireTimeoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robustmq_grpc_pool_acquire_timeouts_total",
			Help: "Total number of connection acquisitions that timed out, by service",
		},
		[]string{"service"},
	)

	// Node-Call metrics
	NodeCallQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "robustmq_node_call_queue_depth",
			Help: "Depth of the global node-call dispatch queue",
		},
	)

	NodeCallDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robustmq_node_call_dispatched_total",
			Help: "Total number of node-call payloads dispatched, by call type",
		},
		[]string{"call_type"},
	)

	NodeCallDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robustmq_node_call_dropped_total",
			Help: "Total number of node-call payloads dropped (node unreachable or channel full)",
		},
		[]string{"call_type", "reason"},
	)

	NodeCallRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "robustmq_node_call_retries_total",
			Help: "Total number of node-call delivery retries",
		},
	)

	// Delay-task metrics
	DelayTasksScheduled = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "robustmq_delay_tasks_scheduled",
			Help: "Current number of scheduled (undelivered) delay tasks, by shard",
		},
		[]string{"shard"},
	)

	DelayTaskScheduleLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "robustmq_delay_task_schedule_latency_seconds",
			Help:    "Difference between a task's fire time and its actual delivery time",
			Buckets: prometheus.DefBuckets,
		},
	)

	DelayTasksRecoveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "robustmq_delay_tasks_recovered_total",
			Help: "Total number of delay tasks replayed during recovery",
		},
	)

	DelayTaskExecuteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robustmq_delay_task_execute_failures_total",
			Help: "Total number of delay task handler executions that failed, by task type",
		},
		[]string{"task_type"},
	)

	RaftWriteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robustmq_raft_write_failures_total",
			Help: "Total number of raft group writes that failed or timed out, by group",
		},
		[]string{"group"},
	)

	// Storage adapter metrics
	StorageWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "robustmq_storage_write_duration_seconds",
			Help:    "Batch write duration by namespace",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"namespace"},
	)

	StorageWriteTimeoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robustmq_storage_write_timeouts_total",
			Help: "Total number of batch writes that exceeded the writer reply timeout",
		},
		[]string{"namespace"},
	)
)

func init() {
	prometheus.MustRegister(
		BrokerNodesTotal,
		MetaServiceStatus,
		HeartbeatsSentTotal,
		HeartbeatFailuresTotal,
		RaftIsLeader,
		RaftLastLogIndex,
		RaftAppliedIndex,
		RaftApplyLag,
		RaftApplyDuration,
		PoolConnectionsInUse,
		PoolConnectionsIdle,
		PoolAcquireTimeoutsTotal,
		NodeCallQueueDepth,
		NodeCallDispatchedTotal,
		NodeCallDroppedTotal,
		NodeCallRetriesTotal,
		DelayTasksScheduled,
		DelayTaskScheduleLatency,
		DelayTasksRecoveredTotal,
		DelayTaskExecuteFailuresTotal,
		RaftWriteFailuresTotal,
		StorageWriteDuration,
		StorageWriteTimeoutsTotal,
	)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
