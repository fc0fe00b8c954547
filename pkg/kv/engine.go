// Package kv defines the ordered, column-family-scoped key-value contract
// the rest of the module is built on, and a bbolt-backed implementation of
// it.
package kv

import "fmt"

// KV is a single key/value pair returned by a prefix scan, in lexicographic
// key order.
type KV struct {
	Key   string
	Value []byte
}

// Write is one mutation inside a Batch: either a Put (Value non-nil) or a
// Delete (Value nil).
type Write struct {
	ColumnFamily string
	Key          string
	Value        []byte
}

// Batch is a set of writes, possibly spanning several column families,
// applied atomically by Engine.BatchWrite.
type Batch []Write

// Put appends a set operation to the batch.
func (b *Batch) Put(cf, key string, value []byte) {
	*b = append(*b, Write{ColumnFamily: cf, Key: key, Value: value})
}

// Delete appends a delete operation to the batch.
func (b *Batch) Delete(cf, key string) {
	*b = append(*b, Write{ColumnFamily: cf, Key: key, Value: nil})
}

// Engine is the ordered KV store contract: column-family-scoped get/put/
// delete, atomic batch write, and prefix iteration in lexicographic order.
// No transactional guarantees are made beyond batch atomicity.
type Engine interface {
	// Get returns the value stored at key in cf, or ErrNotFound.
	Get(cf, key string) ([]byte, error)
	// Put writes one key unconditionally.
	Put(cf, key string, value []byte) error
	// Delete removes one key; deleting an absent key is not an error.
	Delete(cf, key string) error
	// BatchWrite applies every write in b atomically.
	BatchWrite(b Batch) error
	// PrefixScan returns every (key, value) pair in cf whose key starts with
	// prefix, in lexicographic order.
	PrefixScan(cf, prefix string) ([]KV, error)
	// DeletePrefix removes every key in cf starting with prefix.
	DeletePrefix(cf, prefix string) error
	// Close releases the underlying store.
	Close() error
}

// ErrNotFound is returned by Get when the key does not exist in the column family.
var ErrNotFound = fmt.Errorf("kv: key not found")

// PadUint64 zero-pads n to 20 digits so lexicographic order over the
// resulting string equals numeric order, per the offset/timestamp key
// encoding the storage adapter requires.
func PadUint64(n uint64) string {
	return fmt.Sprintf("%020d", n)
}
