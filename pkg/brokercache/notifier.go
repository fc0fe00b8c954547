package brokercache

import (
	"context"
	"fmt"

	"github.com/robustmq/robustmq/pkg/rpc"
	"github.com/robustmq/robustmq/pkg/types"
)

// LocalNotifier adapts Server to delaytask.Notifier's shape for the case
// where the task and its cache live on the same node: a session or
// last-will expiring is this broker's own client, so the notification
// is applied in-process rather than fanned out through Node-Call.
type LocalNotifier struct {
	server *Server
}

// NewLocalNotifier builds a LocalNotifier over server.
func NewLocalNotifier(server *Server) LocalNotifier { return LocalNotifier{server: server} }

// Send dispatches a delete_session/send_last_will NodeCallData directly
// into the local Server, using PartitionKey as the client id.
func (n LocalNotifier) Send(ctx context.Context, data types.NodeCallData) error {
	switch data.Type {
	case types.NodeCallDeleteSession:
		_, err := n.server.DeleteSession(ctx, &rpc.DeleteSessionRequest{ClientID: data.PartitionKey})
		return err
	case types.NodeCallSendLastWill:
		_, err := n.server.SendLastWillMessage(ctx, &rpc.SendLastWillMessageRequest{
			ClientID: data.PartitionKey,
			Payload:  data.Payload,
		})
		return err
	default:
		return fmt.Errorf("brokercache: local notifier cannot handle %q", data.Type)
	}
}
