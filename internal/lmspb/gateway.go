package lmspb

import (
	"context"

	"google.golang.org/grpc"
)

// DispatchRequest is hop one of the client router's two-hop send
// pattern: a token plus an opaque, method-tagged payload. The gateway
// verifies the token, checks permissions once, stamps the envelope, and
// replicates it through Raft before replying. RequestID is minted
// client-side so the second hop (a direct LMSServer call carrying the
// same id in its x-request-id metadata) can fetch the result the
// dispatch committed.
type DispatchRequest struct {
	Token     string
	Method    string
	Payload   []byte
	RequestID string
}

type DispatchResponse struct {
	Success  bool
	Message  string
	LeaderId string
}

// GatewayServer is implemented by internal/server.Node: the single
// leader-side entry point external clients submit commands through.
type GatewayServer interface {
	Dispatch(context.Context, *DispatchRequest) (*DispatchResponse, error)
}

type UnimplementedGatewayServer struct{}

func (UnimplementedGatewayServer) Dispatch(context.Context, *DispatchRequest) (*DispatchResponse, error) {
	return nil, errUnimplementedLMS("Dispatch")
}

func _Gateway_Dispatch_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DispatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GatewayServer).Dispatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/lms.Gateway/Dispatch"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(GatewayServer).Dispatch(ctx, req.(*DispatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var GatewayServiceDesc = grpc.ServiceDesc{
	ServiceName: "lms.Gateway",
	HandlerType: (*GatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Dispatch", Handler: _Gateway_Dispatch_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lms.proto",
}

func RegisterGatewayServer(s grpc.ServiceRegistrar, srv GatewayServer) {
	s.RegisterService(&GatewayServiceDesc, srv)
}

type GatewayClient interface {
	Dispatch(ctx context.Context, in *DispatchRequest, opts ...grpc.CallOption) (*DispatchResponse, error)
}

type gatewayClient struct {
	cc grpc.ClientConnInterface
}

func NewGatewayClient(cc grpc.ClientConnInterface) GatewayClient {
	return &gatewayClient{cc}
}

func (c *gatewayClient) Dispatch(ctx context.Context, in *DispatchRequest, opts ...grpc.CallOption) (*DispatchResponse, error) {
	out := new(DispatchResponse)
	if err := c.cc.Invoke(ctx, "/lms.Gateway/Dispatch", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
