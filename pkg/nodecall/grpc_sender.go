package nodecall

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/robustmq/robustmq/pkg/grpcpool"
	"github.com/robustmq/robustmq/pkg/rpc"
	"github.com/robustmq/robustmq/pkg/types"
)

// GRPCSender is the production Sender: it borrows a connection from a
// shared grpcpool.ClientPool per call and issues one inner RPC per item
// in the batch.
type GRPCSender struct {
	pool        *grpcpool.ClientPool
	clusterName string
}

// NewGRPCSender builds a Sender dialing through pool.
func NewGRPCSender(pool *grpcpool.ClientPool, clusterName string) *GRPCSender {
	return &GRPCSender{pool: pool, clusterName: clusterName}
}

func (s *GRPCSender) envelope() rpc.Envelope { return rpc.Envelope{ClusterName: s.clusterName} }

// SendUpdateCache delivers an update_cache batch to broker-common on addr.
func (s *GRPCSender) SendUpdateCache(ctx context.Context, addr string, batch []types.NodeCallData) error {
	conn, release, err := s.pool.Acquire(ctx, "broker_common", addr)
	if err != nil {
		return fmt.Errorf("nodecall: acquire broker_common conn to %s: %w", addr, err)
	}
	defer release()
	client := rpc.NewBrokerCommonClient(conn)

	for _, item := range batch {
		payload, err := decodeUpdateCachePayload(item.Payload)
		if err != nil {
			return err
		}
		if _, err := client.UpdateCache(ctx, &rpc.UpdateCacheRequest{
			Envelope: s.envelope(),
			Action:   payload.Action,
			Resource: payload.Resource,
			Key:      payload.Key,
			Data:     payload.Data,
		}); err != nil {
			return fmt.Errorf("nodecall: update_cache to %s: %w", addr, err)
		}
	}
	return nil
}

// SendDeleteSession delivers a delete_session batch to broker-mqtt on addr.
func (s *GRPCSender) SendDeleteSession(ctx context.Context, addr string, batch []types.NodeCallData) error {
	conn, release, err := s.pool.Acquire(ctx, "broker_mqtt", addr)
	if err != nil {
		return fmt.Errorf("nodecall: acquire broker_mqtt conn to %s: %w", addr, err)
	}
	defer release()
	client := rpc.NewBrokerMqttClient(conn)

	for _, item := range batch {
		if _, err := client.DeleteSession(ctx, &rpc.DeleteSessionRequest{
			Envelope: s.envelope(),
			ClientID: item.PartitionKey,
		}); err != nil {
			return fmt.Errorf("nodecall: delete_session to %s: %w", addr, err)
		}
	}
	return nil
}

// SendLastWill delivers a send_last_will batch to broker-mqtt on addr.
func (s *GRPCSender) SendLastWill(ctx context.Context, addr string, batch []types.NodeCallData) error {
	conn, release, err := s.pool.Acquire(ctx, "broker_mqtt", addr)
	if err != nil {
		return fmt.Errorf("nodecall: acquire broker_mqtt conn to %s: %w", addr, err)
	}
	defer release()
	client := rpc.NewBrokerMqttClient(conn)

	for _, item := range batch {
		if _, err := client.SendLastWillMessage(ctx, &rpc.SendLastWillMessageRequest{
			Envelope: s.envelope(),
			ClientID: item.PartitionKey,
			Payload:  item.Payload,
		}); err != nil {
			return fmt.Errorf("nodecall: send_last_will to %s: %w", addr, err)
		}
	}
	return nil
}

// SendUpdateJournalCache delivers an update_journal_cache batch to
// journal-inner on addr.
func (s *GRPCSender) SendUpdateJournalCache(ctx context.Context, addr string, batch []types.NodeCallData) error {
	conn, release, err := s.pool.Acquire(ctx, "journal_inner", addr)
	if err != nil {
		return fmt.Errorf("nodecall: acquire journal_inner conn to %s: %w", addr, err)
	}
	defer release()
	client := rpc.NewJournalInnerClient(conn)

	for _, item := range batch {
		payload, err := decodeUpdateCachePayload(item.Payload)
		if err != nil {
			return err
		}
		if _, err := client.UpdateJournalCache(ctx, &rpc.UpdateJournalCacheRequest{
			Envelope: s.envelope(),
			Action:   payload.Action,
			Resource: payload.Resource,
			Key:      payload.Key,
			Data:     payload.Data,
		}); err != nil {
			return fmt.Errorf("nodecall: update_journal_cache to %s: %w", addr, err)
		}
	}
	return nil
}

func decodeUpdateCachePayload(raw []byte) (types.UpdateCachePayload, error) {
	var payload types.UpdateCachePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return types.UpdateCachePayload{}, fmt.Errorf("nodecall: decode update_cache payload: %w", err)
	}
	return payload, nil
}

var _ Sender = (*GRPCSender)(nil)
