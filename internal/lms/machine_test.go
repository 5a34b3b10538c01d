package lms

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	"github.com/mokshajmera002/aos-lms-system/internal/lmspb"
)

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "lms.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	auth := NewAuthenticator([]byte("test-secret"))
	return NewMachine(db, auth, nil)
}

func withRequestID(requestID string) context.Context {
	md := metadata.Pairs(lmspb.RequestIDMetadataKey, requestID)
	return metadata.NewIncomingContext(context.Background(), md)
}

func applyCommand(t *testing.T, m *Machine, index uint64, method string, req interface{}, userID int64, role lmspb.UserRole) string {
	t.Helper()
	body, err := lmspb.MarshalRequest(req)
	require.NoError(t, err)

	env := &lmspb.CommandEnvelope{
		Method:    method,
		Request:   body,
		Timestamp: time.Now().Unix(),
		RequestID: "req-" + method + "-" + time.Now().Format(time.RFC3339Nano),
		UserID:    userID,
		Role:      role,
	}
	data, err := env.Marshal()
	require.NoError(t, err)
	m.Apply(index, data)
	return env.RequestID
}

func TestApplyAndFetchResultRoundTrip(t *testing.T) {
	m := newTestMachine(t)

	requestID := applyCommand(t, m, 1, lmspb.MethodCreateUser, &lmspb.CreateUserRequest{
		Username:     "alice",
		PasswordHash: "irrelevant-hash",
		Role:         lmspb.RoleStudent,
	}, 0, lmspb.RoleAdmin)

	ctx := withRequestID(requestID)
	resp, err := m.CreateUser(ctx, &lmspb.CreateUserRequest{})
	require.NoError(t, err)
	require.NotZero(t, resp.UserID)
}

func TestApplyIsIdempotentOnReplayedRequestID(t *testing.T) {
	m := newTestMachine(t)

	body, err := lmspb.MarshalRequest(&lmspb.CreateUserRequest{Username: "bob", PasswordHash: "h", Role: lmspb.RoleStudent})
	require.NoError(t, err)
	env := &lmspb.CommandEnvelope{Method: lmspb.MethodCreateUser, Request: body, RequestID: "fixed-id", Role: lmspb.RoleAdmin}
	data, err := env.Marshal()
	require.NoError(t, err)

	m.Apply(1, data)
	firstResult, ok := m.dedup.get("fixed-id")
	require.True(t, ok)

	m.Apply(2, data) // replay: Apply must not re-execute the handler
	secondResult, ok := m.dedup.get("fixed-id")
	require.True(t, ok)
	require.Equal(t, firstResult.Response, secondResult.Response)

	var count int
	require.NoError(t, m.db.conn.QueryRow(`SELECT COUNT(*) FROM users WHERE username = 'bob'`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestFetchResultWithoutRequestIDMetadataFails(t *testing.T) {
	m := newTestMachine(t)
	_, err := m.ListUsers(context.Background(), &lmspb.ListUsersRequest{})
	require.Error(t, err)
}

func TestLoginHandlerRejectsWrongPassword(t *testing.T) {
	m := newTestMachine(t)

	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	applyCommand(t, m, 1, lmspb.MethodCreateUser, &lmspb.CreateUserRequest{
		Username: "carol", PasswordHash: hash, Role: lmspb.RoleStudent,
	}, 0, lmspb.RoleAdmin)

	requestID := applyCommand(t, m, 2, lmspb.MethodLogin, &lmspb.LoginRequest{
		Username: "carol", Password: "wrong",
	}, 0, 0)

	ctx := withRequestID(requestID)
	_, err = m.Login(ctx, &lmspb.LoginRequest{})
	require.Error(t, err)
}

func TestPostQueryToLLMStoresPendingPlaceholder(t *testing.T) {
	m := newTestMachine(t)

	requestID := applyCommand(t, m, 1, lmspb.MethodPostQuery, &lmspb.PostQueryRequest{
		Content: "why does leader election time out?",
		Target:  lmspb.TargetLLM,
	}, 7, lmspb.RoleStudent)

	ctx := withRequestID(requestID)
	resp, err := m.PostQuery(ctx, &lmspb.PostQueryRequest{})
	require.NoError(t, err)

	var llmResponse string
	require.NoError(t, m.db.conn.QueryRow(`SELECT llm_response FROM queries WHERE id = ?`, resp.QueryID).Scan(&llmResponse))
	require.Equal(t, lmspb.LLMPendingResponse, llmResponse)
}
