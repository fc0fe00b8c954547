package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// JournalInnerServer is the server-side contract for the journal-inner
// inner RPC: cache invalidation/update pushed to the journal engine.
type JournalInnerServer interface {
	UpdateJournalCache(context.Context, *UpdateJournalCacheRequest) (*UpdateJournalCacheResponse, error)
}

type JournalInnerClient interface {
	UpdateJournalCache(ctx context.Context, in *UpdateJournalCacheRequest, opts ...grpc.CallOption) (*UpdateJournalCacheResponse, error)
}

type journalInnerClient struct{ cc grpc.ClientConnInterface }

func NewJournalInnerClient(cc grpc.ClientConnInterface) JournalInnerClient {
	return &journalInnerClient{cc: cc}
}

func (c *journalInnerClient) UpdateJournalCache(ctx context.Context, in *UpdateJournalCacheRequest, opts ...grpc.CallOption) (*UpdateJournalCacheResponse, error) {
	out := new(UpdateJournalCacheResponse)
	if err := c.cc.Invoke(ctx, "/journal_inner.JournalInner/UpdateJournalCache", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _JournalInner_UpdateJournalCache_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UpdateJournalCacheRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(JournalInnerServer).UpdateJournalCache(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/journal_inner.JournalInner/UpdateJournalCache"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(JournalInnerServer).UpdateJournalCache(ctx, req.(*UpdateJournalCacheRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var JournalInnerServiceDesc = grpc.ServiceDesc{
	ServiceName: "journal_inner.JournalInner",
	HandlerType: (*JournalInnerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "UpdateJournalCache", Handler: _JournalInner_UpdateJournalCache_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "journal_inner.proto",
}

func RegisterJournalInnerServer(s grpc.ServiceRegistrar, srv JournalInnerServer) {
	s.RegisterService(&JournalInnerServiceDesc, srv)
}
