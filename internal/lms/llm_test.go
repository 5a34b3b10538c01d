package lms

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mokshajmera002/aos-lms-system/internal/lmspb"
)

type fakeLLMClient struct {
	answer string
}

func (f *fakeLLMClient) Ask(ctx context.Context, content string) (string, error) {
	return f.answer, nil
}

type capturingSubmitter struct {
	mu       sync.Mutex
	envelope []*lmspb.CommandEnvelope
}

func (c *capturingSubmitter) submit(ctx context.Context, data []byte) error {
	env, err := lmspb.DecodeEnvelope(data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.envelope = append(c.envelope, env)
	c.mu.Unlock()
	return nil
}

func (c *capturingSubmitter) last() *lmspb.CommandEnvelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.envelope) == 0 {
		return nil
	}
	return c.envelope[len(c.envelope)-1]
}

func TestLLMDispatcherProcessesPendingQueryOnceConfigured(t *testing.T) {
	m := newTestMachine(t)

	requestID := applyCommand(t, m, 1, lmspb.MethodPostQuery, &lmspb.PostQueryRequest{
		Content: "what is the quorum size rule",
		Target:  lmspb.TargetLLM,
	}, 3, lmspb.RoleStudent)
	ctx := withRequestID(requestID)
	resp, err := m.PostQuery(ctx, &lmspb.PostQueryRequest{})
	require.NoError(t, err)

	submitter := &capturingSubmitter{}
	m.SetLLMClient(&fakeLLMClient{answer: "majority of (len(peers)+1)/2 + 1"}, submitter.submit)
	t.Cleanup(m.StopLLMDispatcher)

	require.Eventually(t, func() bool {
		return submitter.last() != nil
	}, time.Second, 5*time.Millisecond)

	env := submitter.last()
	require.Equal(t, lmspb.MethodUpdateLLMResponse, env.Method)

	var req lmspb.UpdateLLMResponseRequest
	require.NoError(t, lmspb.UnmarshalRequest(env.Request, &req))
	require.Equal(t, resp.QueryID, req.QueryID)
	require.Equal(t, "majority of (len(peers)+1)/2 + 1", req.Text)
}

func TestLLMDispatcherRecoversPendingQueryOnConfigure(t *testing.T) {
	m := newTestMachine(t)

	applyCommand(t, m, 1, lmspb.MethodPostQuery, &lmspb.PostQueryRequest{
		Content: "left over from a previous leader",
		Target:  lmspb.TargetLLM,
	}, 3, lmspb.RoleStudent)

	submitter := &capturingSubmitter{}
	m.SetLLMClient(&fakeLLMClient{answer: "recovered answer"}, submitter.submit)
	t.Cleanup(m.StopLLMDispatcher)

	require.Eventually(t, func() bool {
		return submitter.last() != nil
	}, time.Second, 5*time.Millisecond)
}
