package main

import (
	"github.com/robustmq/robustmq/pkg/cluster"
	"github.com/robustmq/robustmq/pkg/rpc"
	"github.com/robustmq/robustmq/pkg/storageadapter"
)

// metaServiceServer composes the membership quarter (cluster.MetaServer)
// with the storage quarter (storageadapter.ResourceServer) into one type
// satisfying rpc.MetaServiceServer in full.
type metaServiceServer struct {
	*cluster.MetaServer
	*storageadapter.ResourceServer
}

var _ rpc.MetaServiceServer = (*metaServiceServer)(nil)
