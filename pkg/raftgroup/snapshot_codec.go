package raftgroup

import (
	"encoding/json"

	"github.com/robustmq/robustmq/pkg/kv"
)

func marshalKVs(kvs []kv.KV) ([]byte, error) { return json.Marshal(kvs) }

func unmarshalKVs(data []byte) ([]kv.KV, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var kvs []kv.KV
	if err := json.Unmarshal(data, &kvs); err != nil {
		return nil, err
	}
	return kvs, nil
}
