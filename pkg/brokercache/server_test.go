package brokercache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robustmq/robustmq/pkg/rpc"
)

func TestServer_UpdateCacheAppliesToCache(t *testing.T) {
	cache := New()
	s := NewServer(cache)

	_, err := s.UpdateCache(context.Background(), &rpc.UpdateCacheRequest{
		Action: "set", Resource: ResourceTopic, Key: "t1", Data: []byte("x"),
	})
	require.NoError(t, err)

	data, ok := cache.Get(ResourceTopic, "t1")
	require.True(t, ok)
	require.Equal(t, []byte("x"), data)
}

func TestServer_DeleteSessionRemovesFromCache(t *testing.T) {
	cache := New()
	cache.Set(ResourceSession, "client-1", []byte("session"))
	s := NewServer(cache)

	_, err := s.DeleteSession(context.Background(), &rpc.DeleteSessionRequest{ClientID: "client-1"})
	require.NoError(t, err)

	_, ok := cache.Get(ResourceSession, "client-1")
	require.False(t, ok)
}

func TestServer_SendLastWillMessageClearsStoredWill(t *testing.T) {
	cache := New()
	cache.Set(resourceLastWill, "client-2", []byte("bye"))
	s := NewServer(cache)

	_, err := s.SendLastWillMessage(context.Background(), &rpc.SendLastWillMessageRequest{
		ClientID: "client-2", Payload: []byte("bye"),
	})
	require.NoError(t, err)

	_, ok := cache.Get(resourceLastWill, "client-2")
	require.False(t, ok)
}
