package kv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestEngine(t *testing.T) *BoltEngine {
	t.Helper()
	e, err := OpenBolt(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestBoltEngine_PutGet(t *testing.T) {
	e := openTestEngine(t)

	require.NoError(t, e.Put("shard", "a", []byte("v1")))

	v, err := e.Get("shard", "a")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v)
}

func TestBoltEngine_GetMissing(t *testing.T) {
	e := openTestEngine(t)

	_, err := e.Get("shard", "missing")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestBoltEngine_Delete(t *testing.T) {
	e := openTestEngine(t)
	require.NoError(t, e.Put("shard", "a", []byte("v1")))
	require.NoError(t, e.Delete("shard", "a"))

	_, err := e.Get("shard", "a")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestBoltEngine_BatchWriteAtomic(t *testing.T) {
	e := openTestEngine(t)

	var b Batch
	b.Put("record", "k1", []byte("v1"))
	b.Put("offset", "o1", []byte("1"))
	require.NoError(t, e.BatchWrite(b))

	v, err := e.Get("record", "k1")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v)

	v, err = e.Get("offset", "o1")
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)
}

func TestBoltEngine_PrefixScanOrder(t *testing.T) {
	e := openTestEngine(t)

	require.NoError(t, e.Put("record", "/record/ns/s1/record/"+PadUint64(2), []byte("two")))
	require.NoError(t, e.Put("record", "/record/ns/s1/record/"+PadUint64(0), []byte("zero")))
	require.NoError(t, e.Put("record", "/record/ns/s1/record/"+PadUint64(1), []byte("one")))
	require.NoError(t, e.Put("record", "/record/ns/s2/record/"+PadUint64(0), []byte("other-shard")))

	kvs, err := e.PrefixScan("record", "/record/ns/s1/")
	require.NoError(t, err)
	require.Len(t, kvs, 3)
	require.Equal(t, []byte("zero"), kvs[0].Value)
	require.Equal(t, []byte("one"), kvs[1].Value)
	require.Equal(t, []byte("two"), kvs[2].Value)
}

func TestBoltEngine_DeletePrefix(t *testing.T) {
	e := openTestEngine(t)

	require.NoError(t, e.Put("tag", "/tag/ns/s1/hot/"+PadUint64(0), []byte("x")))
	require.NoError(t, e.Put("tag", "/tag/ns/s1/hot/"+PadUint64(1), []byte("y")))
	require.NoError(t, e.Put("tag", "/tag/ns/s2/hot/"+PadUint64(0), []byte("z")))

	require.NoError(t, e.DeletePrefix("tag", "/tag/ns/s1/"))

	kvs, err := e.PrefixScan("tag", "/tag/ns/")
	require.NoError(t, err)
	require.Len(t, kvs, 1)
}

func TestPadUint64PreservesNumericOrder(t *testing.T) {
	require.True(t, PadUint64(2) < PadUint64(10))  // without zero-padding "2" > "10" lexicographically
	require.True(t, PadUint64(2) < PadUint64(100))
}
