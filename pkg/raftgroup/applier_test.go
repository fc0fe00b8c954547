package raftgroup

import (
	"testing"

	"github.com/robustmq/robustmq/pkg/kv"
	"github.com/robustmq/robustmq/pkg/storageadapter"
	"github.com/robustmq/robustmq/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestKVApplier_SetAndDelete(t *testing.T) {
	engine, err := kv.OpenBolt(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	applier := NewKVApplier(engine, "metadata_0")

	_, err = applier.Apply(types.StorageData{DataType: types.StorageDataTypeSet, Namespace: types.NamespaceBroker, Key: "n1", Value: []byte("payload")})
	require.NoError(t, err)

	v, err := engine.Get(types.NamespaceBroker, "metadata_0/n1")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), v)

	_, err = applier.Apply(types.StorageData{DataType: types.StorageDataTypeDelete, Namespace: types.NamespaceBroker, Key: "n1"})
	require.NoError(t, err)

	_, err = engine.Get(types.NamespaceBroker, "metadata_0/n1")
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestKVApplier_SnapshotRoundTrip(t *testing.T) {
	engine, err := kv.OpenBolt(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	applier := NewKVApplier(engine, "metadata_0")
	_, err = applier.Apply(types.StorageData{DataType: types.StorageDataTypeSet, Namespace: types.NamespaceBroker, Key: "n1", Value: []byte("v1")})
	require.NoError(t, err)

	data, err := applier.SnapshotState()
	require.NoError(t, err)

	fresh, err := kv.OpenBolt(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = fresh.Close() })

	freshApplier := NewKVApplier(fresh, "metadata_0")
	require.NoError(t, freshApplier.RestoreState(data))

	v, err := fresh.Get(types.NamespaceBroker, "metadata_0/n1")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v)
}

func TestStorageApplier_AppendsRecordToAdapter(t *testing.T) {
	engine, err := kv.OpenBolt(t.TempDir())
	require.NoError(t, err)
	adapter := storageadapter.New(engine)
	t.Cleanup(func() { _ = adapter.Close() })

	require.NoError(t, adapter.CreateShard(types.ShardInfo{Namespace: "offset", ShardName: "offset_0"}))

	applier := NewStorageApplier(adapter, "offset", "offset_0")
	result, err := applier.Apply(types.StorageData{DataType: types.StorageDataTypeSet, Key: "k1", Value: []byte("v1")})
	require.NoError(t, err)
	require.Equal(t, uint64(0), result)

	rec, err := adapter.ReadByKey("offset", "offset_0", "k1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, []byte("v1"), rec.Data)
}
