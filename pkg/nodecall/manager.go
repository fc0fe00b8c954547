package nodecall

import (
	"context"
	"fmt"
	"sync"

	"github.com/robustmq/robustmq/pkg/log"
	"github.com/robustmq/robustmq/pkg/metrics"
	"github.com/robustmq/robustmq/pkg/types"
)

// Manager is the Node-Call fan-out pipeline's entry point: one global
// ingress queue, a dispatcher that broadcasts to every known broker node,
// and one router+worker-ring per node.
type Manager struct {
	nodeList NodeList
	sender   Sender

	global chan types.NodeCallData
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	routers map[uint64]*nodeRouter
}

// NewManager starts the dispatcher goroutine and returns a ready Manager.
func NewManager(nodeList NodeList, sender Sender) *Manager {
	m := &Manager{
		nodeList: nodeList,
		sender:   sender,
		global:   make(chan types.NodeCallData, globalQueueCapacity),
		stopCh:   make(chan struct{}),
		routers:  make(map[uint64]*nodeRouter),
	}
	m.wg.Add(1)
	go m.dispatch()
	return m
}

// Send enqueues a notification for fan-out. It is non-blocking while the
// global queue has room; once full, the caller is held until either a
// slot frees up or ctx is done (backpressure).
func (m *Manager) Send(ctx context.Context, data types.NodeCallData) error {
	select {
	case <-m.stopCh:
		return fmt.Errorf("nodecall: manager is shut down")
	default:
	}
	select {
	case m.global <- data:
		metrics.NodeCallQueueDepth.Set(float64(len(m.global)))
		return nil
	default:
	}
	select {
	case m.global <- data:
		metrics.NodeCallQueueDepth.Set(float64(len(m.global)))
		return nil
	case <-m.stopCh:
		return fmt.Errorf("nodecall: manager is shut down")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) dispatch() {
	defer m.wg.Done()
	for {
		select {
		case data := <-m.global:
			metrics.NodeCallQueueDepth.Set(float64(len(m.global)))
			m.broadcast(data)
		case <-m.stopCh:
			return
		}
	}
}

// broadcast copies one message to every known node's router, lazily
// opening routers for nodes seen for the first time and removing any
// router whose inbox is full (treated as a dead node per the fan-out
// contract).
func (m *Manager) broadcast(data types.NodeCallData) {
	for nodeID, addr := range m.nodeList.Nodes() {
		router := m.routerFor(nodeID, addr)
		if !router.send(data) {
			log.Warn(fmt.Sprintf("nodecall: node %d channel full, treating as dead and removing", nodeID))
			metrics.NodeCallDroppedTotal.WithLabelValues(string(data.Type), "node_unreachable").Inc()
			m.removeRouter(nodeID)
		}
	}
}

func (m *Manager) routerFor(nodeID uint64, addr string) *nodeRouter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.routers[nodeID]; ok {
		return r
	}
	r := newNodeRouter(nodeID, addr, m.sender, m.stopCh)
	m.routers[nodeID] = r
	return r
}

func (m *Manager) removeRouter(nodeID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.routers, nodeID)
}

// Shutdown propagates a broadcast stop signal to the dispatcher, every
// router and every worker, then waits for the dispatcher to exit.
func (m *Manager) Shutdown() {
	close(m.stopCh)
	m.wg.Wait()
}
