package rpc

import "google.golang.org/protobuf/types/known/timestamppb"

// Envelope carries the two fields every inner-RPC call is specified to
// attach: a cluster name for multi-tenant isolation, and a request-scoped
// id. Every request message embeds it.
type Envelope struct {
	ClusterName string `json:"cluster_name"`
	RequestID   string `json:"request_id"`
}

// --- meta-service ---

type RegisterNodeRequest struct {
	Envelope
	NodeID        uint64            `json:"node_id"`
	NodeIP        string            `json:"node_ip"`
	NodeInnerAddr string            `json:"node_inner_addr"`
	ExternAddr    string            `json:"extern_addr"`
	Labels        map[string]string `json:"labels"`
	Extend        []byte            `json:"extend"`
	RegisterTime  *timestamppb.Timestamp `json:"register_time"`
}

type RegisterNodeResponse struct{}

type UnregisterNodeRequest struct {
	Envelope
	NodeID uint64 `json:"node_id"`
}

type UnregisterNodeResponse struct{}

type HeartbeatRequest struct {
	Envelope
	NodeID uint64 `json:"node_id"`
}

type HeartbeatResponse struct{}

type GetClusterStatusRequest struct {
	Envelope
}

// ShardStatus mirrors MetaServiceStatus's wire shape: {running_state, current_leader}.
type ShardStatus struct {
	RunningState  string `json:"running_state"` // "Ok" or "Err"
	CurrentLeader uint64 `json:"current_leader"`
}

type GetClusterStatusResponse struct {
	Shards map[string]ShardStatus `json:"shards"`
}

type GetResourceConfigRequest struct {
	Envelope
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
}

type GetResourceConfigResponse struct {
	Value []byte `json:"value"`
}

type CommitOffsetRequest struct {
	Envelope
	Group        string            `json:"group"`
	Namespace    string            `json:"namespace"`
	ShardOffsets map[string]uint64 `json:"shard_offsets"`
}

type CommitOffsetResponse struct{}

type GetOffsetByGroupRequest struct {
	Envelope
	Group string `json:"group"`
}

type ShardOffsetWire struct {
	Namespace string `json:"namespace"`
	Shard     string `json:"shard"`
	Offset    uint64 `json:"offset"`
}

type GetOffsetByGroupResponse struct {
	Offsets []ShardOffsetWire `json:"offsets"`
}

// --- broker-common ---

type UpdateCacheRequest struct {
	Envelope
	Action   string `json:"action"` // "set" | "delete"
	Resource string `json:"resource"`
	Key      string `json:"key"`
	Data     []byte `json:"data"`
}

type UpdateCacheResponse struct{}

// --- broker-mqtt ---

type DeleteSessionRequest struct {
	Envelope
	ClientID string `json:"client_id"`
}

type DeleteSessionResponse struct{}

type SendLastWillMessageRequest struct {
	Envelope
	ClientID string `json:"client_id"`
	Payload  []byte `json:"payload"`
}

type SendLastWillMessageResponse struct{}

// --- journal-inner ---

type UpdateJournalCacheRequest struct {
	Envelope
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Key      string `json:"key"`
	Data     []byte `json:"data"`
}

type UpdateJournalCacheResponse struct{}
