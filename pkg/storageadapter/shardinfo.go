package storageadapter

import (
	"encoding/json"
	"strings"

	"github.com/robustmq/robustmq/pkg/types"
)

func marshalShardInfo(info types.ShardInfo) ([]byte, error) {
	return json.Marshal(info)
}

func unmarshalShardInfo(data []byte) (types.ShardInfo, error) {
	var info types.ShardInfo
	err := json.Unmarshal(data, &info)
	return info, err
}

// splitGroupKey recovers (namespace, shard) from a "{group}/{namespace}/{shard}"
// group-offset key. Namespaces and shard names never contain "/", so this
// is unambiguous.
func splitGroupKey(group, key string) (namespace, shard string, ok bool) {
	rest := strings.TrimPrefix(key, group+"/")
	if rest == key {
		return "", "", false
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
