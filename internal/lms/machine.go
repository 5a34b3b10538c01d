// Package lms implements the application state machine: a deterministic
// command registry keyed by method name, a durable sqlite database, and
// the LLM side-effect dispatcher. It never talks to the Raft log
// directly; internal/server wires Machine.Apply as the replication
// engine's ApplyFunc.
package lms

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/metadata"

	"github.com/mokshajmera002/aos-lms-system/internal/lmspb"
)

// Handler is a pure function of (request, db) → response, as spec.md
// §4.3 requires: deterministic, so every replica applying the same
// command reaches the same state. auth carries the pre-authorized
// caller (SPEC_FULL §4 resolution 6); handlers never re-check role.
type Handler func(m *Machine, env *lmspb.CommandEnvelope, auth *AuthContext) ([]byte, error)

var registry = map[string]Handler{
	lmspb.MethodLogin:             handleLogin,
	lmspb.MethodCreateUser:        handleCreateUser,
	lmspb.MethodListUsers:         handleListUsers,
	lmspb.MethodPostContent:       handlePostContent,
	lmspb.MethodGetPosts:          handleGetPosts,
	lmspb.MethodDownloadPost:      handleDownloadPost,
	lmspb.MethodUploadSolution:    handleUploadSolution,
	lmspb.MethodGetSolutions:      handleGetSolutions,
	lmspb.MethodDownloadSolution:  handleDownloadSolution,
	lmspb.MethodAssignGrade:       handleAssignGrade,
	lmspb.MethodViewGrades:        handleViewGrades,
	lmspb.MethodPostQuery:         handlePostQuery,
	lmspb.MethodGetQueries:        handleGetQueries,
	lmspb.MethodPostReply:         handlePostReply,
	lmspb.MethodGetReplies:        handleGetReplies,
	lmspb.MethodAddFeedback:       handleAddFeedback,
	lmspb.MethodGetAllGrades:      handleGetAllGrades,
	lmspb.MethodUpdateLLMResponse: handleUpdateLLMResponse,
}

// Machine is the application state machine: one per node. It implements
// lmspb.LMSServer for the client router's second-hop result fetch, and
// exposes Apply for wiring into the replication engine.
type Machine struct {
	db     *DB
	auth   *Authenticator
	logger *zap.Logger

	mu      sync.Mutex
	dedup   *dedupCache
	waiters map[string][]chan struct{}
	llm     *llmDispatcher
}

func NewMachine(db *DB, auth *Authenticator, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Machine{
		db:      db,
		auth:    auth,
		logger:  logger,
		dedup:   newDedupCache(4096),
		waiters: make(map[string][]chan struct{}),
	}
	m.llm = newLLMDispatcher(m)
	return m
}

// Apply decodes and dispatches one committed command. The replication
// engine calls this in strict log-index order; it never runs
// concurrently with itself.
func (m *Machine) Apply(index uint64, command []byte) {
	env, err := lmspb.DecodeEnvelope(command)
	if err != nil {
		m.logger.Error("decode command envelope", zap.Uint64("index", index), zap.Error(err))
		return
	}

	m.mu.Lock()
	if _, ok := m.dedup.get(env.RequestID); ok && env.RequestID != "" {
		m.mu.Unlock()
		return // already applied once; at-least-once delivery replayed it
	}
	m.mu.Unlock()

	handler, ok := registry[env.Method]
	if !ok {
		m.logger.Error("unknown command method", zap.String("method", env.Method))
		return
	}

	auth := SystemContext()
	auth.UserID = env.UserID
	auth.Role = env.Role

	resp, handlerErr := handler(m, env, auth)
	result := cachedResult{Response: resp}
	if handlerErr != nil {
		result.Err = handlerErr.Error()
		m.logger.Warn("command apply error", zap.String("method", env.Method), zap.Error(handlerErr))
	}

	m.mu.Lock()
	if env.RequestID != "" {
		m.dedup.put(env.RequestID, result)
	}
	for _, ch := range m.waiters[env.RequestID] {
		close(ch)
	}
	delete(m.waiters, env.RequestID)
	m.mu.Unlock()

	if env.Method == lmspb.MethodPostQuery {
		m.llm.onPostQueryApplied(env, resp)
	}
}

// SetLLMClient wires the external LLM adapter and activates the
// dispatcher; only called while this node is leader (internal/server
// toggles it on election / step-down).
func (m *Machine) SetLLMClient(client LLMClient, submit func(ctx context.Context, envelope []byte) error) {
	m.llm.configure(client, submit)
}

func (m *Machine) StopLLMDispatcher() {
	m.llm.stop()
}

// awaitResult blocks until RequestID appears in the dedup cache, ctx
// is done, or five seconds pass, used by the direct LMSServer methods below (the client
// router's second hop).
func (m *Machine) awaitResult(ctx context.Context, requestID string) (cachedResult, error) {
	m.mu.Lock()
	if r, ok := m.dedup.get(requestID); ok {
		m.mu.Unlock()
		return r, nil
	}
	ch := make(chan struct{})
	m.waiters[requestID] = append(m.waiters[requestID], ch)
	m.mu.Unlock()

	select {
	case <-ch:
		m.mu.Lock()
		r, ok := m.dedup.get(requestID)
		m.mu.Unlock()
		if !ok {
			return cachedResult{}, fmt.Errorf("lms: result for request %s missing after notify", requestID)
		}
		return r, nil
	case <-time.After(5 * time.Second):
		return cachedResult{}, fmt.Errorf("lms: result for request %s not available", requestID)
	case <-ctx.Done():
		return cachedResult{}, ctx.Err()
	}
}

func requestIDFromContext(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	values := md.Get(lmspb.RequestIDMetadataKey)
	if len(values) == 0 || values[0] == "" {
		return "", false
	}
	return values[0], true
}

// fetchResult implements every LMSServer method's body: resolve the
// RequestID the client router attached to this call's metadata, wait
// for the apply loop to have processed it (it was already committed via
// ClientRequest before this second call was made), and return its
// cached response.
func fetchResult[T any](m *Machine, ctx context.Context) (*T, error) {
	requestID, ok := requestIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("lms: request missing %s metadata", lmspb.RequestIDMetadataKey)
	}
	result, err := m.awaitResult(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if result.Err != "" {
		return nil, fmt.Errorf("%s", result.Err)
	}
	resp := new(T)
	if err := lmspb.UnmarshalRequest(result.Response, resp); err != nil {
		return nil, fmt.Errorf("lms: decode cached response: %w", err)
	}
	return resp, nil
}

func (m *Machine) Login(ctx context.Context, _ *lmspb.LoginRequest) (*lmspb.LoginResponse, error) {
	return fetchResult[lmspb.LoginResponse](m, ctx)
}
func (m *Machine) CreateUser(ctx context.Context, _ *lmspb.CreateUserRequest) (*lmspb.CreateUserResponse, error) {
	return fetchResult[lmspb.CreateUserResponse](m, ctx)
}
func (m *Machine) ListUsers(ctx context.Context, _ *lmspb.ListUsersRequest) (*lmspb.ListUsersResponse, error) {
	return fetchResult[lmspb.ListUsersResponse](m, ctx)
}
func (m *Machine) PostContent(ctx context.Context, _ *lmspb.PostContentRequest) (*lmspb.PostContentResponse, error) {
	return fetchResult[lmspb.PostContentResponse](m, ctx)
}
func (m *Machine) GetPosts(ctx context.Context, _ *lmspb.GetPostsRequest) (*lmspb.GetPostsResponse, error) {
	return fetchResult[lmspb.GetPostsResponse](m, ctx)
}
func (m *Machine) DownloadPost(ctx context.Context, _ *lmspb.DownloadPostRequest) (*lmspb.DownloadPostResponse, error) {
	return fetchResult[lmspb.DownloadPostResponse](m, ctx)
}
func (m *Machine) UploadSolution(ctx context.Context, _ *lmspb.UploadSolutionRequest) (*lmspb.UploadSolutionResponse, error) {
	return fetchResult[lmspb.UploadSolutionResponse](m, ctx)
}
func (m *Machine) GetSolutions(ctx context.Context, _ *lmspb.GetSolutionsRequest) (*lmspb.GetSolutionsResponse, error) {
	return fetchResult[lmspb.GetSolutionsResponse](m, ctx)
}
func (m *Machine) DownloadSolution(ctx context.Context, _ *lmspb.DownloadSolutionRequest) (*lmspb.DownloadSolutionResponse, error) {
	return fetchResult[lmspb.DownloadSolutionResponse](m, ctx)
}
func (m *Machine) AssignGrade(ctx context.Context, _ *lmspb.AssignGradeRequest) (*lmspb.AssignGradeResponse, error) {
	return fetchResult[lmspb.AssignGradeResponse](m, ctx)
}
func (m *Machine) ViewGrades(ctx context.Context, _ *lmspb.ViewGradesRequest) (*lmspb.ViewGradesResponse, error) {
	return fetchResult[lmspb.ViewGradesResponse](m, ctx)
}
func (m *Machine) PostQuery(ctx context.Context, _ *lmspb.PostQueryRequest) (*lmspb.PostQueryResponse, error) {
	return fetchResult[lmspb.PostQueryResponse](m, ctx)
}
func (m *Machine) GetQueries(ctx context.Context, _ *lmspb.GetQueriesRequest) (*lmspb.GetQueriesResponse, error) {
	return fetchResult[lmspb.GetQueriesResponse](m, ctx)
}
func (m *Machine) PostReply(ctx context.Context, _ *lmspb.PostReplyRequest) (*lmspb.PostReplyResponse, error) {
	return fetchResult[lmspb.PostReplyResponse](m, ctx)
}
func (m *Machine) GetReplies(ctx context.Context, _ *lmspb.GetRepliesRequest) (*lmspb.GetRepliesResponse, error) {
	return fetchResult[lmspb.GetRepliesResponse](m, ctx)
}
func (m *Machine) AddFeedback(ctx context.Context, _ *lmspb.AddFeedbackRequest) (*lmspb.AddFeedbackResponse, error) {
	return fetchResult[lmspb.AddFeedbackResponse](m, ctx)
}
func (m *Machine) GetAllGrades(ctx context.Context, _ *lmspb.GetAllGradesRequest) (*lmspb.GetAllGradesResponse, error) {
	return fetchResult[lmspb.GetAllGradesResponse](m, ctx)
}
