package kv

import (
	"bytes"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

// columnFamilies are the buckets created up front, one per namespace the
// rest of the module writes to. Creating them eagerly means every caller
// can assume the bucket exists and never has to branch on "first write".
var columnFamilies = [][]byte{
	[]byte("broker"),
	[]byte("record"),
	[]byte("offset"),
	[]byte("key"),
	[]byte("tag"),
	[]byte("timestamp"),
	[]byte("group"),
	[]byte("shard"),
}

// BoltEngine implements Engine on top of go.etcd.io/bbolt, with one bucket
// per column family.
type BoltEngine struct {
	db *bolt.DB
}

// OpenBolt opens (creating if absent) a bbolt database under dataDir and
// pre-creates every known column family.
func OpenBolt(dataDir string) (*BoltEngine, error) {
	dbPath := filepath.Join(dataDir, "robustmq.db")
	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open kv engine: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, cf := range columnFamilies {
			if _, err := tx.CreateBucketIfNotExists(cf); err != nil {
				return fmt.Errorf("create column family %s: %w", cf, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltEngine{db: db}, nil
}

func (e *BoltEngine) Get(cf, key string) ([]byte, error) {
	var out []byte
	err := e.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cf))
		if b == nil {
			return fmt.Errorf("kv: unknown column family %q", cf)
		}
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *BoltEngine) Put(cf, key string, value []byte) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cf))
		if b == nil {
			return fmt.Errorf("kv: unknown column family %q", cf)
		}
		return b.Put([]byte(key), value)
	})
}

func (e *BoltEngine) Delete(cf, key string) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cf))
		if b == nil {
			return fmt.Errorf("kv: unknown column family %q", cf)
		}
		return b.Delete([]byte(key))
	})
}

func (e *BoltEngine) BatchWrite(batch Batch) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		for _, w := range batch {
			b := tx.Bucket([]byte(w.ColumnFamily))
			if b == nil {
				return fmt.Errorf("kv: unknown column family %q", w.ColumnFamily)
			}
			if w.Value == nil {
				if err := b.Delete([]byte(w.Key)); err != nil {
					return err
				}
				continue
			}
			if err := b.Put([]byte(w.Key), w.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *BoltEngine) PrefixScan(cf, prefix string) ([]KV, error) {
	var out []KV
	err := e.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cf))
		if b == nil {
			return fmt.Errorf("kv: unknown column family %q", cf)
		}
		c := b.Cursor()
		p := []byte(prefix)
		for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
			out = append(out, KV{Key: string(k), Value: append([]byte(nil), v...)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *BoltEngine) DeletePrefix(cf, prefix string) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cf))
		if b == nil {
			return fmt.Errorf("kv: unknown column family %q", cf)
		}
		c := b.Cursor()
		p := []byte(prefix)
		var keys [][]byte
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *BoltEngine) Close() error {
	return e.db.Close()
}
