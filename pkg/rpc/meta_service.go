package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// MetaServiceServer is the server-side contract for the meta-service
// inner RPC: register/unregister/heartbeat/cluster-status/resource-config/offset.
type MetaServiceServer interface {
	RegisterNode(context.Context, *RegisterNodeRequest) (*RegisterNodeResponse, error)
	UnregisterNode(context.Context, *UnregisterNodeRequest) (*UnregisterNodeResponse, error)
	Heartbeat(context.Context, *HeartbeatRequest) (*HeartbeatResponse, error)
	GetClusterStatus(context.Context, *GetClusterStatusRequest) (*GetClusterStatusResponse, error)
	GetResourceConfig(context.Context, *GetResourceConfigRequest) (*GetResourceConfigResponse, error)
	CommitOffset(context.Context, *CommitOffsetRequest) (*CommitOffsetResponse, error)
	GetOffsetByGroup(context.Context, *GetOffsetByGroupRequest) (*GetOffsetByGroupResponse, error)
}

// MetaServiceClient is the client-side contract, implemented by metaServiceClient below.
type MetaServiceClient interface {
	RegisterNode(ctx context.Context, in *RegisterNodeRequest, opts ...grpc.CallOption) (*RegisterNodeResponse, error)
	UnregisterNode(ctx context.Context, in *UnregisterNodeRequest, opts ...grpc.CallOption) (*UnregisterNodeResponse, error)
	Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*HeartbeatResponse, error)
	GetClusterStatus(ctx context.Context, in *GetClusterStatusRequest, opts ...grpc.CallOption) (*GetClusterStatusResponse, error)
	GetResourceConfig(ctx context.Context, in *GetResourceConfigRequest, opts ...grpc.CallOption) (*GetResourceConfigResponse, error)
	CommitOffset(ctx context.Context, in *CommitOffsetRequest, opts ...grpc.CallOption) (*CommitOffsetResponse, error)
	GetOffsetByGroup(ctx context.Context, in *GetOffsetByGroupRequest, opts ...grpc.CallOption) (*GetOffsetByGroupResponse, error)
}

type metaServiceClient struct{ cc grpc.ClientConnInterface }

// NewMetaServiceClient wraps a connection (typically leased from grpcpool) with the typed client.
func NewMetaServiceClient(cc grpc.ClientConnInterface) MetaServiceClient {
	return &metaServiceClient{cc: cc}
}

func (c *metaServiceClient) RegisterNode(ctx context.Context, in *RegisterNodeRequest, opts ...grpc.CallOption) (*RegisterNodeResponse, error) {
	out := new(RegisterNodeResponse)
	if err := c.cc.Invoke(ctx, "/meta_service.MetaService/RegisterNode", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metaServiceClient) UnregisterNode(ctx context.Context, in *UnregisterNodeRequest, opts ...grpc.CallOption) (*UnregisterNodeResponse, error) {
	out := new(UnregisterNodeResponse)
	if err := c.cc.Invoke(ctx, "/meta_service.MetaService/UnregisterNode", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metaServiceClient) Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*HeartbeatResponse, error) {
	out := new(HeartbeatResponse)
	if err := c.cc.Invoke(ctx, "/meta_service.MetaService/Heartbeat", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metaServiceClient) GetClusterStatus(ctx context.Context, in *GetClusterStatusRequest, opts ...grpc.CallOption) (*GetClusterStatusResponse, error) {
	out := new(GetClusterStatusResponse)
	if err := c.cc.Invoke(ctx, "/meta_service.MetaService/GetClusterStatus", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metaServiceClient) GetResourceConfig(ctx context.Context, in *GetResourceConfigRequest, opts ...grpc.CallOption) (*GetResourceConfigResponse, error) {
	out := new(GetResourceConfigResponse)
	if err := c.cc.Invoke(ctx, "/meta_service.MetaService/GetResourceConfig", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metaServiceClient) CommitOffset(ctx context.Context, in *CommitOffsetRequest, opts ...grpc.CallOption) (*CommitOffsetResponse, error) {
	out := new(CommitOffsetResponse)
	if err := c.cc.Invoke(ctx, "/meta_service.MetaService/CommitOffset", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metaServiceClient) GetOffsetByGroup(ctx context.Context, in *GetOffsetByGroupRequest, opts ...grpc.CallOption) (*GetOffsetByGroupResponse, error) {
	out := new(GetOffsetByGroupResponse)
	if err := c.cc.Invoke(ctx, "/meta_service.MetaService/GetOffsetByGroup", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _MetaService_RegisterNode_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RegisterNodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetaServiceServer).RegisterNode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/meta_service.MetaService/RegisterNode"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MetaServiceServer).RegisterNode(ctx, req.(*RegisterNodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MetaService_UnregisterNode_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UnregisterNodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetaServiceServer).UnregisterNode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/meta_service.MetaService/UnregisterNode"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MetaServiceServer).UnregisterNode(ctx, req.(*UnregisterNodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MetaService_Heartbeat_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(HeartbeatRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetaServiceServer).Heartbeat(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/meta_service.MetaService/Heartbeat"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MetaServiceServer).Heartbeat(ctx, req.(*HeartbeatRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MetaService_GetClusterStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetClusterStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetaServiceServer).GetClusterStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/meta_service.MetaService/GetClusterStatus"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MetaServiceServer).GetClusterStatus(ctx, req.(*GetClusterStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MetaService_GetResourceConfig_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetResourceConfigRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetaServiceServer).GetResourceConfig(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/meta_service.MetaService/GetResourceConfig"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MetaServiceServer).GetResourceConfig(ctx, req.(*GetResourceConfigRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MetaService_CommitOffset_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CommitOffsetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetaServiceServer).CommitOffset(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/meta_service.MetaService/CommitOffset"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MetaServiceServer).CommitOffset(ctx, req.(*CommitOffsetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MetaService_GetOffsetByGroup_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetOffsetByGroupRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MetaServiceServer).GetOffsetByGroup(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/meta_service.MetaService/GetOffsetByGroup"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MetaServiceServer).GetOffsetByGroup(ctx, req.(*GetOffsetByGroupRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// MetaServiceServiceDesc is the grpc.ServiceDesc protoc-gen-go-grpc would
// normally generate from meta_service.proto.
var MetaServiceServiceDesc = grpc.ServiceDesc{
	ServiceName: "meta_service.MetaService",
	HandlerType: (*MetaServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterNode", Handler: _MetaService_RegisterNode_Handler},
		{MethodName: "UnregisterNode", Handler: _MetaService_UnregisterNode_Handler},
		{MethodName: "Heartbeat", Handler: _MetaService_Heartbeat_Handler},
		{MethodName: "GetClusterStatus", Handler: _MetaService_GetClusterStatus_Handler},
		{MethodName: "GetResourceConfig", Handler: _MetaService_GetResourceConfig_Handler},
		{MethodName: "CommitOffset", Handler: _MetaService_CommitOffset_Handler},
		{MethodName: "GetOffsetByGroup", Handler: _MetaService_GetOffsetByGroup_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "meta_service.proto",
}

// RegisterMetaServiceServer registers an implementation with a *grpc.Server.
func RegisterMetaServiceServer(s grpc.ServiceRegistrar, srv MetaServiceServer) {
	s.RegisterService(&MetaServiceServiceDesc, srv)
}
