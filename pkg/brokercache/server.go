package brokercache

import (
	"context"

	"github.com/robustmq/robustmq/pkg/log"
	"github.com/robustmq/robustmq/pkg/rpc"
	"github.com/robustmq/robustmq/pkg/types"
)

// Server is the receiving side of the Node-Call fan-out on a broker node:
// it implements rpc.BrokerCommonServer and rpc.BrokerMqttServer over a
// single Cache, the broker's only copy of cluster-wide metadata.
type Server struct {
	cache *Cache
}

// NewServer builds a Server backed by cache.
func NewServer(cache *Cache) *Server { return &Server{cache: cache} }

// UpdateCache applies one resource mutation pushed from the meta cluster.
func (s *Server) UpdateCache(ctx context.Context, req *rpc.UpdateCacheRequest) (*rpc.UpdateCacheResponse, error) {
	if err := s.cache.Apply(types.UpdateCachePayload{
		Action:   req.Action,
		Resource: req.Resource,
		Key:      req.Key,
		Data:     req.Data,
	}); err != nil {
		return nil, err
	}
	return &rpc.UpdateCacheResponse{}, nil
}

// DeleteSession drops a client's cached session, e.g. once the
// delay-task engine's session_expire task fires for it elsewhere in the
// cluster.
func (s *Server) DeleteSession(ctx context.Context, req *rpc.DeleteSessionRequest) (*rpc.DeleteSessionResponse, error) {
	s.cache.Delete(ResourceSession, req.ClientID)
	return &rpc.DeleteSessionResponse{}, nil
}

// SendLastWillMessage is called once a client's last_will_expire task
// fires: the payload is handed off for delivery (MQTT publish is an
// external collaborator's concern) and then cleared so it is only ever
// delivered once.
func (s *Server) SendLastWillMessage(ctx context.Context, req *rpc.SendLastWillMessageRequest) (*rpc.SendLastWillMessageResponse, error) {
	log.WithComponent("brokercache").Info().Str("client_id", req.ClientID).Msg("delivering last will")
	s.cache.Delete(resourceLastWill, req.ClientID)
	return &rpc.SendLastWillMessageResponse{}, nil
}

var (
	_ rpc.BrokerCommonServer = (*Server)(nil)
	_ rpc.BrokerMqttServer   = (*Server)(nil)
)
