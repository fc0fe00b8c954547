package delaytask

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robustmq/robustmq/pkg/log"
	"github.com/robustmq/robustmq/pkg/metrics"
	"github.com/robustmq/robustmq/pkg/storageadapter"
	"github.com/robustmq/robustmq/pkg/types"
)

// SessionCache is the subset of Broker Cache the manager needs to expire
// MQTT sessions: look the session up, and remove it once expired.
type SessionCache interface {
	GetSession(clientID string) (data []byte, ok bool)
	DeleteSession(clientID string)
}

// LastWillStore is where last-will payloads live until delivered or expired.
type LastWillStore interface {
	GetLastWill(clientID string) (payload []byte, ok bool, err error)
	DeleteLastWill(clientID string) error
}

// Notifier fans out the DeleteSession/SendLastWillMessage notifications a
// task's execution produces. Its shape matches nodecall.Notifier so a
// *nodecall.Manager satisfies it without this package importing nodecall.
type Notifier interface {
	Send(ctx context.Context, data types.NodeCallData) error
}

// taskSnapshot is the JSON shape persisted to the $delay-task-index topic.
// A Deleted snapshot is a tombstone: recovery drops any task whose latest
// snapshot (by task id) has Deleted set.
type taskSnapshot struct {
	TaskID    string              `json:"task_id"`
	Type      types.DelayTaskType `json:"type"`
	Namespace string              `json:"namespace"`
	Key       string              `json:"key"`
	FireAt    time.Time           `json:"fire_at"`
	Deleted   bool                `json:"deleted"`
}

func (s taskSnapshot) toTask() *types.DelayTask {
	return &types.DelayTask{
		TaskID:    s.TaskID,
		Type:      s.Type,
		Namespace: s.Namespace,
		Key:       s.Key,
		FireAt:    s.FireAt,
	}
}

// Config controls shard count and handler concurrency, per
// delay_queue_num / max_handler_concurrency.
type Config struct {
	ShardCount             int
	MaxHandlerConcurrency  int
	LastWillDelayInterval  time.Duration
}

func (c Config) withDefaults() Config {
	if c.ShardCount <= 0 {
		c.ShardCount = 4
	}
	if c.MaxHandlerConcurrency <= 0 {
		c.MaxHandlerConcurrency = 64
	}
	return c
}

// Manager is the Delay-Task engine: S sharded pop loops feeding a bounded
// pool of concurrent handler executions.
type Manager struct {
	cfg Config

	adapter  *storageadapter.Adapter
	sessions SessionCache
	lastWill LastWillStore
	notifier Notifier

	shards  []*shardQueue
	counter uint64

	sem chan struct{}

	mu        sync.Mutex
	persisted map[string]bool // task ids that were written to the index topic

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewManager constructs a Manager and starts one pop-loop goroutine per shard.
func NewManager(cfg Config, adapter *storageadapter.Adapter, sessions SessionCache, lastWill LastWillStore, notifier Notifier) *Manager {
	cfg = cfg.withDefaults()
	m := &Manager{
		cfg:       cfg,
		adapter:   adapter,
		sessions:  sessions,
		lastWill:  lastWill,
		notifier:  notifier,
		shards:    make([]*shardQueue, cfg.ShardCount),
		sem:       make(chan struct{}, cfg.MaxHandlerConcurrency),
		persisted: make(map[string]bool),
		stopCh:    make(chan struct{}),
	}
	for i := range m.shards {
		m.shards[i] = newShardQueue(i)
	}
	for _, shard := range m.shards {
		m.wg.Add(1)
		go m.popLoop(shard)
	}
	return m
}

// CreateTask schedules task, replacing any existing task with the same id.
// If persistent, a snapshot is appended to the $delay-task-index topic
// before enqueuing, so a crash before enqueue is still recoverable.
func (m *Manager) CreateTask(task *types.DelayTask, persistent bool) error {
	m.mu.Lock()
	alreadyPersisted := m.persisted[task.TaskID]
	m.mu.Unlock()
	if alreadyPersisted {
		if err := m.DeleteTask(task.TaskID); err != nil {
			return err
		}
	} else {
		for _, shard := range m.shards {
			if shard.remove(task.TaskID) {
				metrics.DelayTasksScheduled.WithLabelValues(fmt.Sprintf("%d", shard.index)).Dec()
				break
			}
		}
	}

	if persistent {
		if err := m.persist(task, false); err != nil {
			return fmt.Errorf("delaytask: persist %s: %w", task.TaskID, err)
		}
		m.mu.Lock()
		m.persisted[task.TaskID] = true
		m.mu.Unlock()
	}

	m.enqueue(task)
	return nil
}

func (m *Manager) enqueue(task *types.DelayTask) {
	idx := int(atomic.AddUint64(&m.counter, 1) % uint64(len(m.shards)))
	m.shards[idx].push(task)
	metrics.DelayTasksScheduled.WithLabelValues(fmt.Sprintf("%d", idx)).Inc()
}

// DeleteTask removes a task from whichever shard holds it, and tombstones
// its index entry if it was persisted. Deleting a task that is not found
// anywhere is a no-op (logged).
func (m *Manager) DeleteTask(taskID string) error {
	found := false
	for _, shard := range m.shards {
		if shard.remove(taskID) {
			found = true
			metrics.DelayTasksScheduled.WithLabelValues(fmt.Sprintf("%d", shard.index)).Dec()
			break
		}
	}
	if !found {
		log.Warn(fmt.Sprintf("delaytask: delete_task %s: not found", taskID))
	}

	m.mu.Lock()
	wasPersisted := m.persisted[taskID]
	delete(m.persisted, taskID)
	m.mu.Unlock()
	if wasPersisted {
		return m.persist(&types.DelayTask{TaskID: taskID}, true)
	}
	return nil
}

func (m *Manager) persist(task *types.DelayTask, tombstone bool) error {
	snap := taskSnapshot{
		TaskID:    task.TaskID,
		Type:      task.Type,
		Namespace: task.Namespace,
		Key:       task.Key,
		FireAt:    task.FireAt,
		Deleted:   tombstone,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = m.adapter.Write(types.NamespaceSystemTopic, types.DelayTaskIndexTopic, &types.Record{
		Key:  task.TaskID,
		Data: data,
	})
	return err
}

func (m *Manager) popLoop(shard *shardQueue) {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		default:
		}

		now := time.Now()
		due := shard.popDue(now)
		if due != nil {
			m.dispatch(due)
			continue
		}

		wait := shard.nextWait(now)
		select {
		case <-time.After(wait):
		case <-m.stopCh:
			return
		}
	}
}

// dispatch acquires a concurrency permit and runs the task's handler in
// its own goroutine so a slow handler never stalls the shard's pop loop.
func (m *Manager) dispatch(task *types.DelayTask) {
	select {
	case m.sem <- struct{}{}:
	case <-m.stopCh:
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() { <-m.sem }()
		m.execute(task)
	}()
}

func (m *Manager) execute(task *types.DelayTask) {
	latency := time.Since(task.FireAt)
	metrics.DelayTaskScheduleLatency.Observe(latency.Seconds())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	switch task.Type {
	case types.DelayTaskSessionExpire:
		err = m.handleSessionExpire(ctx, task)
	case types.DelayTaskLastWillExpire:
		err = m.handleLastWillExpire(ctx, task)
	default:
		err = fmt.Errorf("unknown delay task type %q", task.Type)
	}

	if err != nil {
		log.Error(fmt.Sprintf("delaytask: execute %s (%s) failed: %v", task.TaskID, task.Type, err))
		metrics.DelayTaskExecuteFailuresTotal.WithLabelValues(string(task.Type)).Inc()
		return
	}

	m.mu.Lock()
	wasPersisted := m.persisted[task.TaskID]
	delete(m.persisted, task.TaskID)
	m.mu.Unlock()
	if wasPersisted {
		if perr := m.persist(task, true); perr != nil {
			log.Error(fmt.Sprintf("delaytask: tombstone %s after success: %v", task.TaskID, perr))
		}
	}
}

func (m *Manager) handleSessionExpire(ctx context.Context, task *types.DelayTask) error {
	clientID := task.Key
	data, ok := m.sessions.GetSession(clientID)
	if !ok {
		return nil
	}
	m.sessions.DeleteSession(clientID)

	if err := m.notifier.Send(ctx, types.NodeCallData{
		Type:         types.NodeCallDeleteSession,
		PartitionKey: clientID,
		Payload:      data,
	}); err != nil {
		return fmt.Errorf("notify delete_session: %w", err)
	}

	if m.cfg.LastWillDelayInterval > 0 {
		m.enqueue(&types.DelayTask{
			TaskID: clientID + "/last_will",
			Type:   types.DelayTaskLastWillExpire,
			Key:    clientID,
			FireAt: time.Now().Add(m.cfg.LastWillDelayInterval),
		})
		return nil
	}
	return m.handleLastWillExpire(ctx, &types.DelayTask{Key: clientID})
}

func (m *Manager) handleLastWillExpire(ctx context.Context, task *types.DelayTask) error {
	clientID := task.Key
	payload, ok, err := m.lastWill.GetLastWill(clientID)
	if err != nil {
		return fmt.Errorf("read last_will: %w", err)
	}
	if !ok {
		return nil
	}
	if err := m.notifier.Send(ctx, types.NodeCallData{
		Type:         types.NodeCallSendLastWill,
		PartitionKey: clientID,
		Payload:      payload,
	}); err != nil {
		return fmt.Errorf("notify send_last_will: %w", err)
	}
	return m.lastWill.DeleteLastWill(clientID)
}

// Shutdown stops every pop loop and waits for in-flight handlers to finish.
func (m *Manager) Shutdown() {
	close(m.stopCh)
	m.wg.Wait()
}
