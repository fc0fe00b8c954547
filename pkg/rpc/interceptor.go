package rpc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/robustmq/robustmq/pkg/log"
)

// requestIDMetadataKey is the gRPC metadata key request-scoped ids travel
// under, per spec.md §6 ("a request-scoped id").
const requestIDMetadataKey = "x-request-id"

// RequestIDClientInterceptor stamps every outgoing call with a fresh
// request id if the caller hasn't already attached one to the context.
func RequestIDClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		if md, ok := metadata.FromOutgoingContext(ctx); !ok || len(md.Get(requestIDMetadataKey)) == 0 {
			ctx = metadata.AppendToOutgoingContext(ctx, requestIDMetadataKey, uuid.NewString())
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// RequestIDServerInterceptor logs the inbound request id (or mints one if
// the caller somehow omitted it) so every handler's logs can be
// correlated back to the originating call.
func RequestIDServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		requestID := requestIDFromContext(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		log.Debug(fmt.Sprintf("rpc: %s request_id=%s", info.FullMethod, requestID))
		return handler(ctx, req)
	}
}

func requestIDFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	ids := md.Get(requestIDMetadataKey)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
