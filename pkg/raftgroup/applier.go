package raftgroup

import (
	"fmt"

	"github.com/robustmq/robustmq/pkg/kv"
	"github.com/robustmq/robustmq/pkg/storageadapter"
	"github.com/robustmq/robustmq/pkg/types"
)

// KVApplier backs the metadata group: each committed StorageData is a
// direct set/delete against one column family, used for simple
// replicated records (broker registration, shard metadata) that have no
// append-log semantics.
type KVApplier struct {
	engine    kv.Engine
	namespace string // kv key-space prefix this shard owns, e.g. "raft/metadata_0"
}

// NewKVApplier returns an Applier scoped to one shard's private key-space.
func NewKVApplier(engine kv.Engine, namespace string) *KVApplier {
	return &KVApplier{engine: engine, namespace: namespace}
}

func (a *KVApplier) scopedKey(key string) string { return a.namespace + "/" + key }

// Apply implements Applier.
func (a *KVApplier) Apply(data types.StorageData) (interface{}, error) {
	switch data.DataType {
	case types.StorageDataTypeSet:
		if err := a.engine.Put(data.Namespace, a.scopedKey(data.Key), data.Value); err != nil {
			return nil, fmt.Errorf("kv applier set: %w", err)
		}
		return nil, nil
	case types.StorageDataTypeDelete:
		if err := a.engine.Delete(data.Namespace, a.scopedKey(data.Key)); err != nil {
			return nil, fmt.Errorf("kv applier delete: %w", err)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("kv applier: unknown data type %q", data.DataType)
	}
}

// SnapshotState implements Snapshotter by dumping every broker record this
// shard owns (the metadata group's only generic-KV use in this module).
func (a *KVApplier) SnapshotState() ([]byte, error) {
	kvs, err := a.engine.PrefixScan(types.NamespaceBroker, a.namespace+"/")
	if err != nil {
		return nil, err
	}
	return marshalKVs(kvs)
}

// RestoreState implements Snapshotter by replaying a prior SnapshotState dump.
func (a *KVApplier) RestoreState(data []byte) error {
	kvs, err := unmarshalKVs(data)
	if err != nil {
		return err
	}
	var batch kv.Batch
	for _, item := range kvs {
		batch.Put(types.NamespaceBroker, item.Key, item.Value)
	}
	return a.engine.BatchWrite(batch)
}

// StorageApplier backs the offset group: each committed
// StorageData is appended as a Record to the storage adapter's log for
// one (namespace, shard) pair, giving that group dense-offset,
// indexed, replayable history instead of last-write-wins KV semantics.
type StorageApplier struct {
	adapter   *storageadapter.Adapter
	namespace string
	shard     string
}

// NewStorageApplier returns an Applier that appends to one shard of the
// storage adapter's record log.
func NewStorageApplier(adapter *storageadapter.Adapter, namespace, shard string) *StorageApplier {
	return &StorageApplier{adapter: adapter, namespace: namespace, shard: shard}
}

// Apply implements Applier.
func (a *StorageApplier) Apply(data types.StorageData) (interface{}, error) {
	record := &types.Record{
		Key:  data.Key,
		Data: data.Value,
	}
	offset, err := a.adapter.Write(a.namespace, a.shard, record)
	if err != nil {
		return nil, fmt.Errorf("storage applier write: %w", err)
	}
	return offset, nil
}

// SnapshotState implements Snapshotter; the storage adapter's own record
// log is the durable copy of this shard's state, so Raft snapshots carry
// nothing extra.
func (a *StorageApplier) SnapshotState() ([]byte, error) { return nil, nil }

// RestoreState implements Snapshotter; restoration happens by replaying
// records already durable in the storage adapter, so this is a no-op.
func (a *StorageApplier) RestoreState(data []byte) error { return nil }
