package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// BrokerMqttServer is the server-side contract for the broker-mqtt inner
// RPC: session teardown and last-will delivery pushed between brokers.
type BrokerMqttServer interface {
	DeleteSession(context.Context, *DeleteSessionRequest) (*DeleteSessionResponse, error)
	SendLastWillMessage(context.Context, *SendLastWillMessageRequest) (*SendLastWillMessageResponse, error)
}

type BrokerMqttClient interface {
	DeleteSession(ctx context.Context, in *DeleteSessionRequest, opts ...grpc.CallOption) (*DeleteSessionResponse, error)
	SendLastWillMessage(ctx context.Context, in *SendLastWillMessageRequest, opts ...grpc.CallOption) (*SendLastWillMessageResponse, error)
}

type brokerMqttClient struct{ cc grpc.ClientConnInterface }

func NewBrokerMqttClient(cc grpc.ClientConnInterface) BrokerMqttClient {
	return &brokerMqttClient{cc: cc}
}

func (c *brokerMqttClient) DeleteSession(ctx context.Context, in *DeleteSessionRequest, opts ...grpc.CallOption) (*DeleteSessionResponse, error) {
	out := new(DeleteSessionResponse)
	if err := c.cc.Invoke(ctx, "/broker_mqtt.BrokerMqtt/DeleteSession", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *brokerMqttClient) SendLastWillMessage(ctx context.Context, in *SendLastWillMessageRequest, opts ...grpc.CallOption) (*SendLastWillMessageResponse, error) {
	out := new(SendLastWillMessageResponse)
	if err := c.cc.Invoke(ctx, "/broker_mqtt.BrokerMqtt/SendLastWillMessage", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _BrokerMqtt_DeleteSession_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DeleteSessionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BrokerMqttServer).DeleteSession(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/broker_mqtt.BrokerMqtt/DeleteSession"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BrokerMqttServer).DeleteSession(ctx, req.(*DeleteSessionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _BrokerMqtt_SendLastWillMessage_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SendLastWillMessageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BrokerMqttServer).SendLastWillMessage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/broker_mqtt.BrokerMqtt/SendLastWillMessage"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BrokerMqttServer).SendLastWillMessage(ctx, req.(*SendLastWillMessageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var BrokerMqttServiceDesc = grpc.ServiceDesc{
	ServiceName: "broker_mqtt.BrokerMqtt",
	HandlerType: (*BrokerMqttServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "DeleteSession", Handler: _BrokerMqtt_DeleteSession_Handler},
		{MethodName: "SendLastWillMessage", Handler: _BrokerMqtt_SendLastWillMessage_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "broker_mqtt.proto",
}

func RegisterBrokerMqttServer(s grpc.ServiceRegistrar, srv BrokerMqttServer) {
	s.RegisterService(&BrokerMqttServiceDesc, srv)
}
