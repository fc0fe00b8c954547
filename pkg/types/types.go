package types

import (
	"encoding/json"
	"time"
)

// BrokerNode is a single broker process registered with the metadata service.
type BrokerNode struct {
	NodeID     uint64
	NodeIP     string
	NodeInnerAddr string // addr used for node-to-node RPC (broker-common/broker-mqtt)
	ExternAddr string    // addr advertised to clients
	Labels     map[string]string
	Extend     []byte // opaque, broker-kind-specific payload
	StartTime  time.Time
}

// MetaServiceStatusKind is the liveness classification of a single meta-service node.
type MetaServiceStatusKind string

const (
	MetaServiceStatusUp      MetaServiceStatusKind = "up"
	MetaServiceStatusUnknown MetaServiceStatusKind = "unknown"
	MetaServiceStatusDown    MetaServiceStatusKind = "down"
)

// MetaServiceStatus is the cluster controller's view of one meta-service node's health.
type MetaServiceStatus struct {
	NodeID       uint64
	Addr         string
	Status       MetaServiceStatusKind
	LastContact  time.Time
	ConsecutiveMisses int
}

// RaftGroupName identifies which of the three named Raft groups an operation targets.
type RaftGroupName string

const (
	RaftGroupMetadata RaftGroupName = "metadata"
	RaftGroupOffset   RaftGroupName = "offset"
	RaftGroupData     RaftGroupName = "data"
)

// RaftShardStatus is a snapshot of one shard's hashicorp/raft state.
type RaftShardStatus struct {
	ShardID     string // "{group}_{index}"
	Group       RaftGroupName
	Index       int
	IsLeader    bool
	LeaderAddr  string
	LastIndex   uint64
	AppliedIndex uint64
	Peers       []string
}

// StorageData is the payload carried through Raft apply for the metadata
// and offset groups: a single mutation against one column family.
type StorageData struct {
	DataType  StorageDataType `json:"data_type"`
	Namespace string          `json:"namespace"` // column family / secondary-index namespace
	Key       string          `json:"key"`
	Value     []byte          `json:"value"`
}

// StorageDataType is the kind of mutation StorageData carries.
type StorageDataType string

const (
	StorageDataTypeSet    StorageDataType = "set"
	StorageDataTypeDelete StorageDataType = "delete"
)

// Header is one opaque name/value pair carried alongside a Record's data,
// the way message headers ride alongside an MQTT or Kafka payload.
type Header struct {
	Name  string
	Value string
}

// Record is a single stored message/entry inside one shard of a namespace.
// Immutable once written; offsets are dense per shard starting at 0.
type Record struct {
	Offset    uint64
	Key       string
	Tags      []string
	Timestamp int64 // unix nanos
	GroupName string
	CRC32     uint32
	Headers   []Header
	Data      []byte
}

// Marshal renders a Record for storage. Kept as a method so callers never
// hand-encode the wire shape themselves.
func (r *Record) Marshal() ([]byte, error) { return json.Marshal(r) }

// UnmarshalRecord parses bytes written by Record.Marshal.
func UnmarshalRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ShardInfo describes one logical shard of a namespace: its replica set and
// offset range. The storage adapter stores it as given and does not update
// the offsets as records are written.
type ShardInfo struct {
	Namespace  string
	ShardName  string
	ReplicaSet []uint64 // node ids
	StartOffset uint64
	EndOffset   uint64 // 0 means "open" (no end)
}

// ShardOffset is returned by get_offset_by_group: the resumable read
// position for one shard of one namespace within a Raft group.
type ShardOffset struct {
	Group     RaftGroupName
	Namespace string
	Shard     string
	Offset    uint64
}

// DelayTaskType enumerates the kinds of work the delay-task engine schedules.
type DelayTaskType string

const (
	DelayTaskSessionExpire  DelayTaskType = "session_expire"
	DelayTaskLastWillExpire DelayTaskType = "last_will_expire"
)

// DelayTask is one scheduled unit of deferred work.
type DelayTask struct {
	TaskID    string
	Type      DelayTaskType
	Namespace string
	Key       string // key of the resource the task acts on (e.g. session's client id)
	FireAt    time.Time
	Delivered bool
}

// Less orders DelayTasks by fire time, for use as a container/heap element.
func (t *DelayTask) Less(other *DelayTask) bool { return t.FireAt.Before(other.FireAt) }

// NodeCallDataType enumerates the kinds of fan-out notifications the
// Node-Call pipeline carries.
type NodeCallDataType string

const (
	NodeCallUpdateCache      NodeCallDataType = "update_cache"
	NodeCallDeleteSession    NodeCallDataType = "delete_session"
	NodeCallSendLastWill     NodeCallDataType = "send_last_will"
	NodeCallUpdateJournalMeta NodeCallDataType = "update_journal_cache"
)

// NodeCallData is one unit of work dispatched to every connected broker node.
type NodeCallData struct {
	Type        NodeCallDataType
	PartitionKey string // used to pick a worker in the target node's ring; empty => worker 0
	Payload     []byte
}

// UpdateCachePayload is the JSON shape carried in a NodeCallUpdateCache or
// NodeCallUpdateJournalMeta NodeCallData's Payload: which resource kind
// changed, under what key, set or deleted.
type UpdateCachePayload struct {
	Action   string `json:"action"` // "set" | "delete"
	Resource string `json:"resource"`
	Key      string `json:"key"`
	Data     []byte `json:"data"`
}

// PoolHealth is a snapshot of one address's connection pool inside the gRPC pool.
type PoolHealth struct {
	Service     string
	Addr        string
	MaxOpen     uint64
	Connections uint64
	InUse       uint64
	Idle        uint64
}

// Healthy reports whether the pool has at least one idle or total connection.
func (h PoolHealth) Healthy() bool { return h.Connections > 0 }

// Column family / secondary-index namespaces, per the storage adapter's key layout.
const (
	NamespaceBroker    = "broker"
	NamespaceRecord    = "record"
	NamespaceOffset    = "offset"
	NamespaceKey       = "key"
	NamespaceTag       = "tag"
	NamespaceTimestamp = "timestamp"
	NamespaceGroup     = "group"
	NamespaceShard     = "shard"
)

// DelayTaskIndexTopic is the well-known topic the delay-task manager persists
// its schedule to, replayed on recovery.
const DelayTaskIndexTopic = "$delay-task-index"

// NamespaceSystemTopic is the Storage Adapter logical namespace (as
// opposed to column family) internal system topics like
// DelayTaskIndexTopic live under.
const NamespaceSystemTopic = "system"
