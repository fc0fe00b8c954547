package storageadapter

import (
	"encoding/binary"
	"fmt"

	"github.com/robustmq/robustmq/pkg/kv"
)

// Key layouts, one per column family / secondary-index namespace. The
// namespace itself is the bbolt bucket (see pkg/kv's column families), so
// none of these paths repeat the namespace name.

func shardKey(namespace, shard string) string {
	return fmt.Sprintf("%s/%s", namespace, shard)
}

func recordKey(namespace, shard string, offset uint64) string {
	return fmt.Sprintf("%s/%s/%s", namespace, shard, kv.PadUint64(offset))
}

func recordPrefix(namespace, shard string) string {
	return fmt.Sprintf("%s/%s/", namespace, shard)
}

func keyIndexKey(namespace, shard, key string) string {
	return fmt.Sprintf("%s/%s/%s", namespace, shard, key)
}

func tagIndexKey(namespace, shard, tag string, offset uint64) string {
	return fmt.Sprintf("%s/%s/%s/%s", namespace, shard, tag, kv.PadUint64(offset))
}

func tagIndexPrefix(namespace, shard, tag string) string {
	return fmt.Sprintf("%s/%s/%s/", namespace, shard, tag)
}

func timestampIndexKey(namespace, shard string, ts int64, offset uint64) string {
	return fmt.Sprintf("%s/%s/%s/%s", namespace, shard, kv.PadUint64(uint64(ts)), kv.PadUint64(offset))
}

func timestampIndexPrefix(namespace, shard string) string {
	return fmt.Sprintf("%s/%s/", namespace, shard)
}

func groupKey(group, namespace, shard string) string {
	return fmt.Sprintf("%s/%s/%s", group, namespace, shard)
}

func groupPrefix(group string) string {
	return fmt.Sprintf("%s/", group)
}

func offsetValue(offset uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, offset)
	return b
}

func parseOffsetValue(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
