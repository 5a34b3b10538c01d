package lms

import (
	"context"

	"github.com/mokshajmera002/aos-lms-system/internal/llmpb"
)

// grpcLLMClient adapts an llmpb.LLMClient grpc stub to the LLMClient
// interface llmDispatcher depends on.
type grpcLLMClient struct {
	client llmpb.LLMClient
}

func NewGRPCLLMClient(client llmpb.LLMClient) LLMClient {
	return &grpcLLMClient{client: client}
}

func (c *grpcLLMClient) Ask(ctx context.Context, content string) (string, error) {
	resp, err := c.client.Ask(ctx, &llmpb.AskRequest{Content: content})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
