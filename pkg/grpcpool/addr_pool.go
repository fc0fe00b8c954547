package grpcpool

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"

	"github.com/robustmq/robustmq/pkg/types"
)

// addrPool is the bounded connection pool for one (service, address) pair.
// Connections are dialed lazily up to maxOpen; once at capacity, callers
// wait on the idle channel for one to be released.
type addrPool struct {
	service string
	addr    string
	maxOpen uint64

	mu     sync.Mutex
	conns  []*grpc.ClientConn
	inUse  map[*grpc.ClientConn]bool
	idle   chan *grpc.ClientConn
	closed bool
}

func newAddrPool(service, addr string, maxOpen uint64) *addrPool {
	return &addrPool{
		service: service,
		addr:    addr,
		maxOpen: maxOpen,
		inUse:   make(map[*grpc.ClientConn]bool),
		idle:    make(chan *grpc.ClientConn, maxOpen),
	}
}

func (p *addrPool) acquire(ctx context.Context) (*grpc.ClientConn, error) {
	// fast path: an idle connection is immediately available
	select {
	case conn := <-p.idle:
		p.markInUse(conn)
		return conn, nil
	default:
	}

	// capacity available: dial a new one
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("pool closed")
	}
	if uint64(len(p.conns)) < p.maxOpen {
		p.mu.Unlock()
		conn, err := dial(p.addr)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", p.addr, err)
		}
		p.mu.Lock()
		p.conns = append(p.conns, conn)
		p.inUse[conn] = true
		p.mu.Unlock()
		return conn, nil
	}
	p.mu.Unlock()

	// at capacity: wait for a release or the context deadline
	select {
	case conn := <-p.idle:
		p.markInUse(conn)
		return conn, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire timed out: %w", ctx.Err())
	}
}

func (p *addrPool) markInUse(conn *grpc.ClientConn) {
	p.mu.Lock()
	p.inUse[conn] = true
	p.mu.Unlock()
}

func (p *addrPool) release(conn *grpc.ClientConn) {
	p.mu.Lock()
	delete(p.inUse, conn)
	closed := p.closed
	p.mu.Unlock()

	if closed {
		_ = conn.Close()
		return
	}
	p.idle <- conn
}

func (p *addrPool) health() types.PoolHealth {
	p.mu.Lock()
	defer p.mu.Unlock()
	return types.PoolHealth{
		Service:     p.service,
		Addr:        p.addr,
		MaxOpen:     p.maxOpen,
		Connections: uint64(len(p.conns)),
		InUse:       uint64(len(p.inUse)),
		Idle:        uint64(len(p.idle)),
	}
}

func (p *addrPool) closeAll() error {
	p.mu.Lock()
	p.closed = true
	conns := p.conns
	p.conns = nil
	p.inUse = make(map[*grpc.ClientConn]bool)
	p.mu.Unlock()

	var firstErr error
	for _, c := range conns {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
