package raftgroup

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/raft"
	"github.com/robustmq/robustmq/pkg/types"
)

// Command is the envelope every Raft log entry carries: one StorageData
// mutation to hand to the shard's Applier.
type Command struct {
	Data types.StorageData `json:"data"`
}

// Applier is the state machine logic a shard's FSM defers to. Shards
// feeding the metadata group and shards feeding the offset/data groups
// wire different Appliers over the same FSM.
type Applier interface {
	Apply(data types.StorageData) (interface{}, error)
}

// Snapshotter lets an Applier participate in Raft snapshot/restore without
// the FSM knowing anything about its storage layout.
type Snapshotter interface {
	SnapshotState() ([]byte, error)
	RestoreState(data []byte) error
}

// FSM is a generic hashicorp/raft finite state machine: Apply decodes a
// Command and hands its StorageData to the Applier; Snapshot/Restore
// delegate to the Snapshotter.
type FSM struct {
	mu          sync.RWMutex
	applier     Applier
	snapshotter Snapshotter
}

func newFSM(applier Applier, snapshotter Snapshotter) *FSM {
	return &FSM{applier: applier, snapshotter: snapshotter}
}

// Apply is called by Raft once a log entry is committed.
func (f *FSM) Apply(log *raft.Log) interface{} {
	var cmd Command
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return fmt.Errorf("unmarshal raft command: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	result, err := f.applier.Apply(cmd.Data)
	if err != nil {
		return err
	}
	return result
}

// Snapshot captures the shard's current state for log compaction.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.snapshotter == nil {
		return &fsmSnapshot{}, nil
	}

	data, err := f.snapshotter.SnapshotState()
	if err != nil {
		return nil, fmt.Errorf("snapshot state: %w", err)
	}
	return &fsmSnapshot{data: data}, nil
}

// Restore replaces the shard's state with a previously taken snapshot.
func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.snapshotter == nil {
		return nil
	}
	return f.snapshotter.RestoreState(data)
}

type fsmSnapshot struct {
	data []byte
}

func (s *fsmSnapshot) Persist(sink raft.SnapshotSink) error {
	_, err := sink.Write(s.data)
	if err != nil {
		sink.Cancel()
		return err
	}
	return sink.Close()
}

func (s *fsmSnapshot) Release() {}
