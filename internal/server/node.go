// Package server wires one cluster node together: the Raft replication
// engine, the LMS application state machine, and the grpc surface both
// peers and clients talk to.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/mokshajmera002/aos-lms-system/internal/llmpb"
	"github.com/mokshajmera002/aos-lms-system/internal/lms"
	"github.com/mokshajmera002/aos-lms-system/internal/lmspb"
	"github.com/mokshajmera002/aos-lms-system/internal/raft"
	"github.com/mokshajmera002/aos-lms-system/internal/raftpb"
)

// Config assembles everything a node needs to boot: its own id/address,
// its peers', where to persist Raft state and the application database,
// and (optionally) where the external LLM adapter lives.
type Config struct {
	ID        uint32
	SelfAddr  string
	PeerAddrs map[uint32]string
	StorePath string
	DBPath    string
	LLMAddr   string
	JWTSecret []byte
	Raft      *raft.Config
	Logger    *zap.Logger
}

// Node owns a node's full process-local state: the replication engine,
// the state machine, the persisted stores, and the grpc server exposing
// raft.Raft (peer RPCs), lms.Machine (client result-fetch), and the
// gateway (client command submission) on one listener.
type Node struct {
	cfg    Config
	logger *zap.Logger

	persister *raft.BoltPersister
	db        *lms.DB
	auth      *lms.Authenticator
	machine   *lms.Machine
	engine    *raft.Raft

	llmConn   *grpc.ClientConn
	llmClient lms.LLMClient

	grpcServer *grpc.Server
	listener   net.Listener

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a node's components and binds its listener, but starts
// nothing — call Run to bring it up.
func New(cfg Config) (*Node, error) {
	raftpb.RegisterCodec()

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	persister, err := raft.NewBoltPersister(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("server: open raft store: %w", err)
	}
	db, err := lms.OpenDB(cfg.DBPath)
	if err != nil {
		persister.Close()
		return nil, fmt.Errorf("server: open application db: %w", err)
	}
	auth := lms.NewAuthenticator(cfg.JWTSecret)
	machine := lms.NewMachine(db, auth, logger.Named("lms"))

	peers := make(map[uint32]raft.Peer, len(cfg.PeerAddrs))
	for id, addr := range cfg.PeerAddrs {
		peers[id] = raft.NewGRPCPeer(addr)
	}
	engine, err := raft.NewRaft(cfg.ID, peers, persister, cfg.Raft, logger.Named("raft"), machine.Apply)
	if err != nil {
		db.Close()
		persister.Close()
		return nil, fmt.Errorf("server: build raft engine: %w", err)
	}

	n := &Node{
		cfg:       cfg,
		logger:    logger,
		persister: persister,
		db:        db,
		auth:      auth,
		machine:   machine,
		engine:    engine,
	}

	if cfg.LLMAddr != "" {
		conn, err := grpc.NewClient(cfg.LLMAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			n.Close()
			return nil, fmt.Errorf("server: dial llm adapter: %w", err)
		}
		n.llmConn = conn
		n.llmClient = lms.NewGRPCLLMClient(llmpb.NewLLMClient(conn))
	}

	listener, err := net.Listen("tcp", cfg.SelfAddr)
	if err != nil {
		n.Close()
		return nil, fmt.Errorf("server: listen on %s: %w", cfg.SelfAddr, err)
	}
	n.listener = listener

	n.grpcServer = grpc.NewServer()
	raftpb.RegisterRaftServer(n.grpcServer, engine)
	lmspb.RegisterLMSServer(n.grpcServer, machine)
	lmspb.RegisterGatewayServer(n.grpcServer, n)

	return n, nil
}

// Run starts the Raft engine, the leadership-transition watcher, and
// the grpc server. It returns once the grpc server has started serving;
// the caller should watch ctx for its own shutdown trigger.
func (n *Node) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel

	n.engine.Run(ctx)

	n.wg.Add(1)
	go func() { defer n.wg.Done(); n.watchLeadership(ctx) }()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.grpcServer.Serve(n.listener); err != nil {
			n.logger.Warn("grpc server stopped", zap.Error(err))
		}
	}()
}

// Shutdown stops the grpc server, the Raft engine, and releases the
// persisted stores. Safe to call once after Run.
func (n *Node) Shutdown() {
	if n.cancel != nil {
		n.cancel()
	}
	if n.grpcServer != nil {
		n.grpcServer.GracefulStop()
	}
	n.engine.Stop()
	n.machine.StopLLMDispatcher()
	n.wg.Wait()
	n.Close()
}

// Close releases resources New acquired, without attempting a graceful
// protocol shutdown — used both by Shutdown and by New's own error paths.
func (n *Node) Close() {
	if n.llmConn != nil {
		n.llmConn.Close()
	}
	if n.db != nil {
		n.db.Close()
	}
	if n.persister != nil {
		n.persister.Close()
	}
}

const leadershipPollInterval = 50 * time.Millisecond

// watchLeadership activates the LLM dispatcher only while this node
// believes itself leader (spec.md §4.3: only the leader calls out to the
// external LLM service), deactivating it the moment that stops being
// true. raft.Raft exposes no leadership-change notification, so this
// polls IsLeader(); the interval is well under a heartbeat period, so a
// step-down is noticed before a stale leader could issue a second
// UpdateLLMResponse for the same query.
func (n *Node) watchLeadership(ctx context.Context) {
	ticker := time.NewTicker(leadershipPollInterval)
	defer ticker.Stop()
	wasLeader := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			isLeader := n.engine.IsLeader()
			if isLeader && !wasLeader && n.llmClient != nil {
				n.machine.SetLLMClient(n.llmClient, n.submitCommand)
			} else if !isLeader && wasLeader {
				n.machine.StopLLMDispatcher()
			}
			wasLeader = isLeader
		}
	}
}

// submitCommand lets lms.Machine's LLM dispatcher replicate its own
// UpdateLLMResponse commands the same way any client command is
// replicated, through this node's own Raft engine.
func (n *Node) submitCommand(ctx context.Context, envelope []byte) error {
	resp, err := n.engine.ClientRequest(ctx, &raftpb.ClientRequestMessage{Command: envelope})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("server: command rejected: %s", resp.Message)
	}
	return nil
}

// Dispatch is the gateway's single entry point for external client
// commands (hop one of the client router's two-hop send pattern): it
// verifies the caller's token, checks permissions once at the leader
// (SPEC_FULL §4 resolution 6), pre-hashes a CreateUser password
// (resolution 2), stamps a deterministic envelope, and replicates it.
func (n *Node) Dispatch(ctx context.Context, req *lmspb.DispatchRequest) (*lmspb.DispatchResponse, error) {
	var userID int64
	var role lmspb.UserRole

	if req.Method != lmspb.MethodLogin {
		authCtx, err := n.auth.VerifyToken(req.Token)
		if err != nil {
			return &lmspb.DispatchResponse{Success: false, Message: err.Error()}, nil
		}
		if err := lms.CheckPermission(req.Method, authCtx.Role); err != nil {
			return &lmspb.DispatchResponse{Success: false, Message: err.Error()}, nil
		}
		userID, role = authCtx.UserID, authCtx.Role
	}

	payload, err := n.prepareCommandPayload(req.Method, req.Payload)
	if err != nil {
		return &lmspb.DispatchResponse{Success: false, Message: err.Error()}, nil
	}

	env := &lmspb.CommandEnvelope{
		Method:    req.Method,
		Request:   payload,
		Timestamp: time.Now().Unix(),
		RequestID: req.RequestID,
		UserID:    userID,
		Role:      role,
	}
	data, err := env.Marshal()
	if err != nil {
		return nil, fmt.Errorf("server: marshal command envelope: %w", err)
	}

	resp, err := n.engine.ClientRequest(ctx, &raftpb.ClientRequestMessage{Command: data})
	if err != nil {
		return nil, err
	}
	return &lmspb.DispatchResponse{Success: resp.Success, Message: resp.Message, LeaderId: resp.LeaderId}, nil
}

// prepareCommandPayload runs the one leader-side, non-deterministic
// rewrite the command set needs: hashing CreateUser's plaintext password
// before it ever enters the log, so every replica's apply-time handler
// sees the same bcrypt hash (SPEC_FULL §4 resolution 2).
func (n *Node) prepareCommandPayload(method string, payload []byte) ([]byte, error) {
	if method != lmspb.MethodCreateUser {
		return payload, nil
	}
	var req lmspb.CreateUserRequest
	if err := lmspb.UnmarshalRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("server: decode create user request: %w", err)
	}
	hash, err := lms.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	req.PasswordHash = hash
	req.Password = ""
	return lmspb.MarshalRequest(&req)
}
