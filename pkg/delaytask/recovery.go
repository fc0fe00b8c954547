package delaytask

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/robustmq/robustmq/pkg/log"
	"github.com/robustmq/robustmq/pkg/metrics"
	"github.com/robustmq/robustmq/pkg/storageadapter"
	"github.com/robustmq/robustmq/pkg/types"
)

const (
	recoveryPageSize  = 100
	maxReadRetry      = 3
	retryBackoff      = 1 * time.Second
	recoveryLogStride = 1000
)

// Recover replays the full $delay-task-index topic and restores every
// task whose latest snapshot isn't a tombstone: overdue tasks execute
// immediately, others re-enter their shard's queue. Call once at startup
// before serving traffic.
func (m *Manager) Recover() error {
	latest := make(map[string]taskSnapshot)
	offset := uint64(0)
	recovered := 0

	for {
		records, err := m.readPageWithRetry(offset)
		if err != nil {
			return fmt.Errorf("delaytask: recovery aborted: %w", err)
		}
		if len(records) == 0 {
			break
		}

		for _, rec := range records {
			var snap taskSnapshot
			if err := json.Unmarshal(rec.Data, &snap); err != nil {
				log.Warn(fmt.Sprintf("delaytask: recovery skipping unreadable record at offset %d: %v", rec.Offset, err))
				continue
			}
			latest[snap.TaskID] = snap
			offset = rec.Offset + 1
			recovered++
			if recovered%recoveryLogStride == 0 {
				log.Info(fmt.Sprintf("delaytask: recovered %d records so far", recovered))
			}
		}

		if len(records) < recoveryPageSize {
			break
		}
	}

	now := time.Now()
	restored := 0
	for _, snap := range latest {
		if snap.Deleted {
			continue
		}
		task := snap.toTask()
		m.mu.Lock()
		m.persisted[task.TaskID] = true
		m.mu.Unlock()

		if task.FireAt.Before(now) {
			m.dispatch(task)
		} else {
			m.enqueue(task)
		}
		restored++
	}

	metrics.DelayTasksRecoveredTotal.Add(float64(restored))
	log.Info(fmt.Sprintf("delaytask: recovery complete, %d records scanned, %d tasks restored", recovered, restored))
	return nil
}

func (m *Manager) readPageWithRetry(offset uint64) ([]*types.Record, error) {
	var lastErr error
	for attempt := 1; attempt <= maxReadRetry; attempt++ {
		records, err := m.adapter.ReadByOffset(types.NamespaceSystemTopic, types.DelayTaskIndexTopic, offset, storageadapter.ReadOptions{
			MaxRecordNum: recoveryPageSize,
		})
		if err == nil {
			return records, nil
		}
		lastErr = err
		log.Warn(fmt.Sprintf("delaytask: recovery read at offset %d failed (attempt %d/%d): %v", offset, attempt, maxReadRetry, err))
		if attempt < maxReadRetry {
			time.Sleep(retryBackoff)
		}
	}
	return nil, lastErr
}
