// Package grpcpool implements the per-(service, address) pooled gRPC
// connection manager every inner-RPC caller leases connections from: a
// bounded pool of *grpc.ClientConn per address, a settable leader-address
// cache for follower-to-leader forwarding, and pool health introspection.
package grpcpool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/robustmq/robustmq/pkg/metrics"
	"github.com/robustmq/robustmq/pkg/types"
)

const defaultAcquireTimeout = 10 * time.Second

// NoAvailableConnection is returned by Acquire when the pool is at
// max-open and no connection frees up before the acquisition timeout.
type NoAvailableConnection struct {
	Service string
	Addr    string
	Reason  string
}

func (e *NoAvailableConnection) Error() string {
	return fmt.Sprintf("grpcpool: no available connection for %s@%s: %s", e.Service, e.Addr, e.Reason)
}

// Config tunes a ClientPool.
type Config struct {
	MaxOpenConnections uint64
	AcquireTimeout      time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxOpenConnections == 0 {
		c.MaxOpenConnections = 4
	}
	if c.AcquireTimeout == 0 {
		c.AcquireTimeout = defaultAcquireTimeout
	}
	return c
}

// ClientPool owns one addrPool per (service, address) pair plus the
// cross-cutting leader-address cache used by Raft followers to forward
// writes.
type ClientPool struct {
	cfg Config

	mu     sync.Mutex
	pools  map[string]*addrPool
	leader sync.Map // addr -> leaderAddr
}

// New constructs an empty pool; addrPools are created lazily on first Acquire.
func New(cfg Config) *ClientPool {
	return &ClientPool{cfg: cfg.withDefaults(), pools: make(map[string]*addrPool)}
}

func poolKey(service, addr string) string { return service + "|" + addr }

func (p *ClientPool) pool(service, addr string) *addrPool {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := poolKey(service, addr)
	if ap, ok := p.pools[key]; ok {
		return ap
	}
	ap := newAddrPool(service, addr, p.cfg.MaxOpenConnections)
	p.pools[key] = ap
	return ap
}

// Acquire leases a connection to (service, addr), dialing a new one if
// the pool has capacity, or waiting up to the configured acquire timeout
// for one to free up. The returned release func must be called exactly
// once when the caller is done with the connection.
func (p *ClientPool) Acquire(ctx context.Context, service, addr string) (*grpc.ClientConn, func(), error) {
	ap := p.pool(service, addr)

	ctx, cancel := context.WithTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()

	conn, err := ap.acquire(ctx)
	if err != nil {
		metrics.PoolAcquireTimeoutsTotal.WithLabelValues(service).Inc()
		return nil, nil, &NoAvailableConnection{Service: service, Addr: addr, Reason: err.Error()}
	}
	return conn, func() { ap.release(conn) }, nil
}

// Warmup acquires and immediately releases one connection to addr, so
// the pool holds an idle client connection before the first real request.
// Client connections are created lazily: Warmup performs no round trip
// and does not check that addr is reachable.
func (p *ClientPool) Warmup(ctx context.Context, service, addr string) error {
	conn, release, err := p.Acquire(ctx, service, addr)
	if err != nil {
		return err
	}
	release()
	_ = conn
	return nil
}

// GetLeaderAddr returns the cached leader address for addr, if any.
func (p *ClientPool) GetLeaderAddr(addr string) (string, bool) {
	v, ok := p.leader.Load(addr)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// SetLeaderAddr caches addr's known leader address.
func (p *ClientPool) SetLeaderAddr(addr, leaderAddr string) { p.leader.Store(addr, leaderAddr) }

// ClearLeaderCache drops every cached leader mapping.
func (p *ClientPool) ClearLeaderCache() { p.leader.Range(func(k, _ any) bool { p.leader.Delete(k); return true }) }

// PoolCount returns the number of distinct (service, addr) pools created so far.
func (p *ClientPool) PoolCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pools)
}

// Health returns a snapshot of one pool's connection counts.
func (p *ClientPool) Health(service, addr string) types.PoolHealth {
	p.mu.Lock()
	ap, ok := p.pools[poolKey(service, addr)]
	p.mu.Unlock()
	if !ok {
		return types.PoolHealth{Service: service, Addr: addr}
	}
	return ap.health()
}

// AllHealth implements metrics.PoolStatsSource.
func (p *ClientPool) AllHealth() []metrics.PoolHealthSample {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]metrics.PoolHealthSample, 0, len(p.pools))
	for _, ap := range p.pools {
		h := ap.health()
		out = append(out, metrics.PoolHealthSample{Service: h.Service, Addr: h.Addr, InUse: h.InUse, Idle: h.Idle})
	}
	return out
}

// ClearPool closes and removes the pool for (service, addr).
func (p *ClientPool) ClearPool(service, addr string) error {
	p.mu.Lock()
	ap, ok := p.pools[poolKey(service, addr)]
	if ok {
		delete(p.pools, poolKey(service, addr))
	}
	p.mu.Unlock()
	if !ok {
		return nil
	}
	return ap.closeAll()
}

// Close closes every pool.
func (p *ClientPool) Close() error {
	p.mu.Lock()
	pools := p.pools
	p.pools = make(map[string]*addrPool)
	p.mu.Unlock()

	var firstErr error
	for _, ap := range pools {
		if err := ap.closeAll(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func dial(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
}
