package grpcpool

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientPool_AcquireDialsUpToMaxOpen(t *testing.T) {
	p := New(Config{MaxOpenConnections: 2, AcquireTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = p.Close() })

	_, release1, err := p.Acquire(context.Background(), "meta", "127.0.0.1:9000")
	require.NoError(t, err)
	_, release2, err := p.Acquire(context.Background(), "meta", "127.0.0.1:9000")
	require.NoError(t, err)

	h := p.Health("meta", "127.0.0.1:9000")
	require.Equal(t, uint64(2), h.Connections)
	require.Equal(t, uint64(2), h.InUse)

	release1()
	release2()
}

func TestClientPool_AcquireTimesOutAtCapacity(t *testing.T) {
	p := New(Config{MaxOpenConnections: 1, AcquireTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = p.Close() })

	_, _, err := p.Acquire(context.Background(), "meta", "127.0.0.1:9001")
	require.NoError(t, err)

	_, _, err = p.Acquire(context.Background(), "meta", "127.0.0.1:9001")
	require.Error(t, err)
	var noConn *NoAvailableConnection
	require.ErrorAs(t, err, &noConn)
}

func TestClientPool_ReleaseFreesSlotForNextAcquire(t *testing.T) {
	p := New(Config{MaxOpenConnections: 1, AcquireTimeout: 500 * time.Millisecond})
	t.Cleanup(func() { _ = p.Close() })

	conn, release, err := p.Acquire(context.Background(), "meta", "127.0.0.1:9002")
	require.NoError(t, err)
	_ = conn
	release()

	_, release2, err := p.Acquire(context.Background(), "meta", "127.0.0.1:9002")
	require.NoError(t, err)
	release2()

	h := p.Health("meta", "127.0.0.1:9002")
	require.Equal(t, uint64(1), h.Connections)
	require.Equal(t, uint64(0), h.InUse)
}

func TestClientPool_LeaderAddrCache(t *testing.T) {
	p := New(Config{})

	_, ok := p.GetLeaderAddr("a")
	require.False(t, ok)

	p.SetLeaderAddr("a", "b")
	leader, ok := p.GetLeaderAddr("a")
	require.True(t, ok)
	require.Equal(t, "b", leader)

	p.ClearLeaderCache()
	_, ok = p.GetLeaderAddr("a")
	require.False(t, ok)
}

func TestClientPool_WarmupEstablishesConnection(t *testing.T) {
	p := New(Config{MaxOpenConnections: 1})
	t.Cleanup(func() { _ = p.Close() })

	require.NoError(t, p.Warmup(context.Background(), "meta", "127.0.0.1:9003"))

	h := p.Health("meta", "127.0.0.1:9003")
	require.Equal(t, uint64(1), h.Connections)
	require.Equal(t, uint64(0), h.InUse)
	require.Equal(t, uint64(1), h.Idle)
}

func TestClientPool_ClearPoolRemovesAndCloses(t *testing.T) {
	p := New(Config{MaxOpenConnections: 1})
	t.Cleanup(func() { _ = p.Close() })

	require.NoError(t, p.Warmup(context.Background(), "meta", "127.0.0.1:9004"))
	require.Equal(t, 1, p.PoolCount())

	require.NoError(t, p.ClearPool("meta", "127.0.0.1:9004"))
	require.Equal(t, 0, p.PoolCount())
}

func TestClientPool_AllHealthSatisfiesMetricsInterface(t *testing.T) {
	p := New(Config{MaxOpenConnections: 1})
	t.Cleanup(func() { _ = p.Close() })

	require.NoError(t, p.Warmup(context.Background(), "meta", "127.0.0.1:9005"))
	samples := p.AllHealth()
	require.Len(t, samples, 1)
	require.Equal(t, "meta", samples[0].Service)
}

func TestClientPool_ConcurrentAcquireRelease(t *testing.T) {
	p := New(Config{MaxOpenConnections: 4, AcquireTimeout: time.Second})
	t.Cleanup(func() { _ = p.Close() })

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, release, err := p.Acquire(context.Background(), "meta", "127.0.0.1:9006")
			if err == nil {
				release()
			}
		}()
	}
	wg.Wait()

	h := p.Health("meta", "127.0.0.1:9006")
	require.LessOrEqual(t, h.Connections, uint64(4))
	require.Equal(t, uint64(0), h.InUse)
}
