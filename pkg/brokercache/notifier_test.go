package brokercache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robustmq/robustmq/pkg/types"
)

func TestLocalNotifier_SendDeleteSessionAppliesLocally(t *testing.T) {
	cache := New()
	cache.Set(ResourceSession, "client-1", []byte("session"))
	n := NewLocalNotifier(NewServer(cache))

	err := n.Send(context.Background(), types.NodeCallData{
		Type:         types.NodeCallDeleteSession,
		PartitionKey: "client-1",
	})
	require.NoError(t, err)

	_, ok := cache.Get(ResourceSession, "client-1")
	require.False(t, ok)
}

func TestLocalNotifier_SendLastWillAppliesLocally(t *testing.T) {
	cache := New()
	cache.Set(resourceLastWill, "client-2", []byte("bye"))
	n := NewLocalNotifier(NewServer(cache))

	err := n.Send(context.Background(), types.NodeCallData{
		Type:         types.NodeCallSendLastWill,
		PartitionKey: "client-2",
		Payload:      []byte("bye"),
	})
	require.NoError(t, err)

	_, ok := cache.Get(resourceLastWill, "client-2")
	require.False(t, ok)
}

func TestLocalNotifier_UnknownTypeErrors(t *testing.T) {
	n := NewLocalNotifier(NewServer(New()))
	err := n.Send(context.Background(), types.NodeCallData{Type: types.NodeCallUpdateCache})
	require.Error(t, err)
}
