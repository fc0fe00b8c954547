package storageadapter

import (
	"testing"
	"time"

	"github.com/robustmq/robustmq/pkg/kv"
	"github.com/robustmq/robustmq/pkg/types"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	engine, err := kv.OpenBolt(t.TempDir())
	require.NoError(t, err)
	a := New(engine)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestAdapter_CreateShardThenDuplicateFails(t *testing.T) {
	a := newTestAdapter(t)
	info := types.ShardInfo{Namespace: "ns", ShardName: "s1", ReplicaSet: []uint64{1}}

	require.NoError(t, a.CreateShard(info))
	require.ErrorIs(t, a.CreateShard(info), ErrShardExists)
}

func TestAdapter_ListShard(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.CreateShard(types.ShardInfo{Namespace: "ns", ShardName: "s1"}))
	require.NoError(t, a.CreateShard(types.ShardInfo{Namespace: "ns", ShardName: "s2"}))

	all, err := a.ListShard("ns", "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	one, err := a.ListShard("ns", "s1")
	require.NoError(t, err)
	require.Len(t, one, 1)
	require.Equal(t, "s1", one[0].ShardName)

	none, err := a.ListShard("ns", "missing")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestAdapter_WriteAssignsMonotonicOffsets(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.CreateShard(types.ShardInfo{Namespace: "ns", ShardName: "s1"}))

	o0, err := a.Write("ns", "s1", &types.Record{Key: "a", Data: []byte("1")})
	require.NoError(t, err)
	o1, err := a.Write("ns", "s1", &types.Record{Key: "b", Data: []byte("2")})
	require.NoError(t, err)

	require.Equal(t, uint64(0), o0)
	require.Equal(t, uint64(1), o1)
}

func TestAdapter_BatchWriteThenReadByOffsetRoundTrips(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.CreateShard(types.ShardInfo{Namespace: "ns", ShardName: "s1"}))

	records := []*types.Record{
		{Key: "a", Tags: []string{"hot"}, Data: []byte("one")},
		{Key: "b", Tags: []string{"hot"}, Data: []byte("two")},
		{Key: "c", Data: []byte("three")},
	}
	offsets, err := a.BatchWrite("ns", "s1", records)
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1, 2}, offsets)

	got, err := a.ReadByOffset("ns", "s1", 0, ReadOptions{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []byte("one"), got[0].Data)
	require.Equal(t, []byte("two"), got[1].Data)
	require.Equal(t, []byte("three"), got[2].Data)

	fromMiddle, err := a.ReadByOffset("ns", "s1", 1, ReadOptions{})
	require.NoError(t, err)
	require.Len(t, fromMiddle, 2)
	require.Equal(t, uint64(1), fromMiddle[0].Offset)
}

func TestAdapter_ReadByOffsetRespectsMaxRecordNum(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.CreateShard(types.ShardInfo{Namespace: "ns", ShardName: "s1"}))
	for i := 0; i < 5; i++ {
		_, err := a.Write("ns", "s1", &types.Record{Data: []byte("x")})
		require.NoError(t, err)
	}

	got, err := a.ReadByOffset("ns", "s1", 0, ReadOptions{MaxRecordNum: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestAdapter_ReadByKeyReturnsLatestOffset(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.CreateShard(types.ShardInfo{Namespace: "ns", ShardName: "s1"}))

	_, err := a.Write("ns", "s1", &types.Record{Key: "dup", Data: []byte("first")})
	require.NoError(t, err)
	_, err = a.Write("ns", "s1", &types.Record{Key: "dup", Data: []byte("second")})
	require.NoError(t, err)

	rec, err := a.ReadByKey("ns", "s1", "dup")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, []byte("second"), rec.Data)

	missing, err := a.ReadByKey("ns", "s1", "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestAdapter_ReadByTagReturnsEveryMatchingRecord(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.CreateShard(types.ShardInfo{Namespace: "ns", ShardName: "s1"}))

	_, err := a.Write("ns", "s1", &types.Record{Tags: []string{"hot"}, Data: []byte("first")})
	require.NoError(t, err)
	_, err = a.Write("ns", "s1", &types.Record{Tags: []string{"hot", "urgent"}, Data: []byte("second")})
	require.NoError(t, err)
	_, err = a.Write("ns", "s1", &types.Record{Tags: []string{"urgent"}, Data: []byte("third")})
	require.NoError(t, err)

	hot, err := a.ReadByTag("ns", "s1", "hot")
	require.NoError(t, err)
	require.Len(t, hot, 2)
	require.Equal(t, []byte("first"), hot[0].Data)
	require.Equal(t, []byte("second"), hot[1].Data)

	urgent, err := a.ReadByTag("ns", "s1", "urgent")
	require.NoError(t, err)
	require.Len(t, urgent, 2)
	require.Equal(t, []byte("second"), urgent[0].Data)
	require.Equal(t, []byte("third"), urgent[1].Data)

	none, err := a.ReadByTag("ns", "s1", "missing")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestAdapter_WriteComputesCRC32(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.CreateShard(types.ShardInfo{Namespace: "ns", ShardName: "s1"}))

	rec := &types.Record{Key: "a", Data: []byte("payload")}
	_, err := a.Write("ns", "s1", rec)
	require.NoError(t, err)
	require.NotZero(t, rec.CRC32)

	got, err := a.ReadByKey("ns", "s1", "a")
	require.NoError(t, err)
	require.Equal(t, rec.CRC32, got.CRC32)
}

func TestAdapter_GetOffsetByTimestampBoundary(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.CreateShard(types.ShardInfo{Namespace: "ns", ShardName: "s1"}))

	base := time.Now().UnixNano()
	_, err := a.Write("ns", "s1", &types.Record{Timestamp: base, Data: []byte("t0")})
	require.NoError(t, err)
	_, err = a.Write("ns", "s1", &types.Record{Timestamp: base + 1000, Data: []byte("t1")})
	require.NoError(t, err)

	offset, ok, err := a.GetOffsetByTimestamp("ns", "s1", base)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(0), offset)

	offset, ok, err = a.GetOffsetByTimestamp("ns", "s1", base+500)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1), offset)

	_, ok, err = a.GetOffsetByTimestamp("ns", "s1", base+10000)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAdapter_CommitAndGetOffsetByGroup(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.CommitOffset(types.RaftGroupOffset, "ns", map[string]uint64{
		"s1": 10,
		"s2": 20,
	}))

	offsets, err := a.GetOffsetByGroup(types.RaftGroupOffset)
	require.NoError(t, err)
	require.Len(t, offsets, 2)

	byShard := map[string]uint64{}
	for _, o := range offsets {
		require.Equal(t, "ns", o.Namespace)
		byShard[o.Shard] = o.Offset
	}
	require.Equal(t, uint64(10), byShard["s1"])
	require.Equal(t, uint64(20), byShard["s2"])
}

func TestAdapter_DeleteShardRemovesRecordsAndIndexes(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.CreateShard(types.ShardInfo{Namespace: "ns", ShardName: "s1"}))
	_, err := a.Write("ns", "s1", &types.Record{Key: "a", Tags: []string{"hot"}, Data: []byte("x")})
	require.NoError(t, err)

	require.NoError(t, a.DeleteShard("ns", "s1"))

	shards, err := a.ListShard("ns", "s1")
	require.NoError(t, err)
	require.Empty(t, shards)

	rec, err := a.ReadByKey("ns", "s1", "a")
	require.NoError(t, err)
	require.Nil(t, rec)

	// shard can be recreated cleanly after deletion
	require.NoError(t, a.CreateShard(types.ShardInfo{Namespace: "ns", ShardName: "s1"}))
	offset, err := a.Write("ns", "s1", &types.Record{Data: []byte("fresh")})
	require.NoError(t, err)
	require.Equal(t, uint64(0), offset)
}

func TestAdapter_EmptyBatchWriteIsNoop(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.CreateShard(types.ShardInfo{Namespace: "ns", ShardName: "s1"}))

	offsets, err := a.BatchWrite("ns", "s1", nil)
	require.NoError(t, err)
	require.Empty(t, offsets)

	next, err := a.Write("ns", "s1", &types.Record{Data: []byte("x")})
	require.NoError(t, err)
	require.Equal(t, uint64(0), next)
}

func TestAdapter_CloseRejectsFurtherWrites(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.CreateShard(types.ShardInfo{Namespace: "ns", ShardName: "s1"}))
	require.NoError(t, a.Close())

	_, err := a.Write("ns", "s1", &types.Record{Data: []byte("x")})
	require.ErrorIs(t, err, ErrClosed)
}
