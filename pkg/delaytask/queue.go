// Package delaytask schedules one-shot deferred work (MQTT session
// expiry and last-will delivery) across S sharded time-ordered priority
// queues, each served by its own pop-loop goroutine, with bounded global
// handler concurrency and crash recovery from a persisted index topic.
package delaytask

import (
	"container/heap"

	"github.com/robustmq/robustmq/pkg/types"
)

// heapItem wraps a DelayTask with its position in the heap so it can be
// located and removed in O(log n) on replacement or deletion.
type heapItem struct {
	task  *types.DelayTask
	index int
}

// taskHeap is a container/heap.Interface ordering tasks by fire time.
type taskHeap []*heapItem

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool { return h[i].task.FireAt.Before(h[j].task.FireAt) }

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x interface{}) {
	item := x.(*heapItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// peek returns the earliest task without removing it.
func (h taskHeap) peek() *heapItem {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

var _ heap.Interface = (*taskHeap)(nil)
