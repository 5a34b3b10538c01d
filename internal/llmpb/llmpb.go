// Package llmpb defines the wire messages and grpc plumbing for the
// external LLM adapter service PostQuery(target=llm) calls out to.
// Same hand-written grpc.ServiceDesc approach as internal/raftpb and
// internal/lmspb, for a single trivial unary method.
package llmpb

import (
	"context"

	"google.golang.org/grpc"
)

type AskRequest struct {
	Content string
}

type AskResponse struct {
	Text string
}

// LLMServer is implemented by cmd/llmserver's stub.
type LLMServer interface {
	Ask(context.Context, *AskRequest) (*AskResponse, error)
}

type UnimplementedLLMServer struct{}

func (UnimplementedLLMServer) Ask(context.Context, *AskRequest) (*AskResponse, error) {
	return nil, unimplementedError("Ask")
}

type unimplementedError string

func (e unimplementedError) Error() string { return "llmpb: method " + string(e) + " not implemented" }

func _LLM_Ask_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AskRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LLMServer).Ask(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/llm.LLM/Ask"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LLMServer).Ask(ctx, req.(*AskRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var LLMServiceDesc = grpc.ServiceDesc{
	ServiceName: "llm.LLM",
	HandlerType: (*LLMServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ask", Handler: _LLM_Ask_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "llm.proto",
}

func RegisterLLMServer(s grpc.ServiceRegistrar, srv LLMServer) {
	s.RegisterService(&LLMServiceDesc, srv)
}

type LLMClient interface {
	Ask(ctx context.Context, in *AskRequest, opts ...grpc.CallOption) (*AskResponse, error)
}

type llmClient struct {
	cc grpc.ClientConnInterface
}

func NewLLMClient(cc grpc.ClientConnInterface) LLMClient {
	return &llmClient{cc}
}

func (c *llmClient) Ask(ctx context.Context, in *AskRequest, opts ...grpc.CallOption) (*AskResponse, error) {
	out := new(AskResponse)
	if err := c.cc.Invoke(ctx, "/llm.LLM/Ask", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
