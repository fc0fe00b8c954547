package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// BrokerCommonServer is the server-side contract for the broker-common
// inner RPC: cache invalidation/update pushed from the meta cluster.
type BrokerCommonServer interface {
	UpdateCache(context.Context, *UpdateCacheRequest) (*UpdateCacheResponse, error)
}

type BrokerCommonClient interface {
	UpdateCache(ctx context.Context, in *UpdateCacheRequest, opts ...grpc.CallOption) (*UpdateCacheResponse, error)
}

type brokerCommonClient struct{ cc grpc.ClientConnInterface }

func NewBrokerCommonClient(cc grpc.ClientConnInterface) BrokerCommonClient {
	return &brokerCommonClient{cc: cc}
}

func (c *brokerCommonClient) UpdateCache(ctx context.Context, in *UpdateCacheRequest, opts ...grpc.CallOption) (*UpdateCacheResponse, error) {
	out := new(UpdateCacheResponse)
	if err := c.cc.Invoke(ctx, "/broker_common.BrokerCommon/UpdateCache", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _BrokerCommon_UpdateCache_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UpdateCacheRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BrokerCommonServer).UpdateCache(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/broker_common.BrokerCommon/UpdateCache"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BrokerCommonServer).UpdateCache(ctx, req.(*UpdateCacheRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var BrokerCommonServiceDesc = grpc.ServiceDesc{
	ServiceName: "broker_common.BrokerCommon",
	HandlerType: (*BrokerCommonServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "UpdateCache", Handler: _BrokerCommon_UpdateCache_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "broker_common.proto",
}

func RegisterBrokerCommonServer(s grpc.ServiceRegistrar, srv BrokerCommonServer) {
	s.RegisterService(&BrokerCommonServiceDesc, srv)
}
