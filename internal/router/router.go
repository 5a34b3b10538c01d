// Package router implements the client side of the two-hop send
// pattern: find the current leader, submit a command through its
// gateway, then fetch the committed result with a second direct call
// carrying the same request id (spec.md §6, SPEC_FULL §3).
package router

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/mokshajmera002/aos-lms-system/internal/lmspb"
	"github.com/mokshajmera002/aos-lms-system/internal/raftpb"
)

// ErrNoLeaderFound is returned when every known node refused to answer
// the leader probe (cluster down, or client misconfigured with the
// wrong addresses).
var ErrNoLeaderFound = errors.New("router: no leader found among known nodes")

const (
	maxAttempts  = 3
	retryBackoff = 150 * time.Millisecond
	probeTimeout = 2 * time.Second
)

// Client is a non-interactive cluster client: it holds the cluster's
// node id → address map, a cached leader hint, and the bearer token
// issued by Login. cmd/client constructs one per CLI invocation.
type Client struct {
	logger  *zap.Logger
	addrs   map[uint32]string
	token   string

	mu       sync.Mutex
	conns    map[uint32]*grpc.ClientConn
	leaderID uint32
	hasLeader bool
}

func New(addrs map[uint32]string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		logger: logger,
		addrs:  addrs,
		conns:  make(map[uint32]*grpc.ClientConn),
	}
}

// SetToken attaches the bearer token every subsequent Call authenticates
// with (set once, right after a successful Login).
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, conn := range c.conns {
		conn.Close()
	}
}

func (c *Client) dial(id uint32) (*grpc.ClientConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if conn, ok := c.conns[id]; ok {
		return conn, nil
	}
	addr, ok := c.addrs[id]
	if !ok {
		return nil, fmt.Errorf("router: unknown node id %d", id)
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("router: dial %s: %w", addr, err)
	}
	c.conns[id] = conn
	return conn, nil
}

func (c *Client) leaderHint() (uint32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.leaderID, c.hasLeader
}

func (c *Client) setLeaderHint(id uint32) {
	c.mu.Lock()
	c.leaderID, c.hasLeader = id, true
	c.mu.Unlock()
}

func (c *Client) clearLeaderHint() {
	c.mu.Lock()
	c.hasLeader = false
	c.mu.Unlock()
}

// leaderConn resolves the current leader: it trusts a cached hint first,
// and otherwise probes every known node with an empty ClientRequest
// (spec.md §4.2's probe form) until one answers as leader or points at
// one.
func (c *Client) leaderConn(ctx context.Context) (*grpc.ClientConn, uint32, error) {
	if id, ok := c.leaderHint(); ok {
		if conn, err := c.dial(id); err == nil {
			if ok, _ := probeIsLeader(ctx, conn); ok {
				return conn, id, nil
			}
		}
		c.clearLeaderHint()
	}

	for id := range c.addrs {
		conn, err := c.dial(id)
		if err != nil {
			continue
		}
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		resp, err := raftpb.NewRaftClient(conn).ClientRequest(pctx, &raftpb.ClientRequestMessage{})
		cancel()
		if err != nil {
			continue
		}
		if resp.Success {
			c.setLeaderHint(id)
			return conn, id, nil
		}
		if resp.LeaderId != "" {
			if hintID, perr := strconv.ParseUint(resp.LeaderId, 10, 32); perr == nil {
				if hintConn, derr := c.dial(uint32(hintID)); derr == nil {
					c.setLeaderHint(uint32(hintID))
					return hintConn, uint32(hintID), nil
				}
			}
		}
	}
	return nil, 0, ErrNoLeaderFound
}

func probeIsLeader(ctx context.Context, conn *grpc.ClientConn) (bool, error) {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	resp, err := raftpb.NewRaftClient(conn).ClientRequest(pctx, &raftpb.ClientRequestMessage{})
	if err != nil {
		return false, err
	}
	return resp.Success, nil
}

// Call performs the two-hop send: it dispatches method/req to the
// leader's gateway, waits for the command to commit, then fetches the
// typed result over the leader's LMSServer surface using the same
// request id. Req's method name must match one of the lmspb.Method*
// constants; Resp is the matching *Response type.
func Call[Req any, Resp any](ctx context.Context, c *Client, method string, req *Req) (*Resp, error) {
	payload, err := lmspb.MarshalRequest(req)
	if err != nil {
		return nil, fmt.Errorf("router: marshal request: %w", err)
	}
	requestID := uuid.NewString()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(retryBackoff * time.Duration(attempt))
		}

		conn, _, err := c.leaderConn(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		dispatchResp, err := lmspb.NewGatewayClient(conn).Dispatch(ctx, &lmspb.DispatchRequest{
			Token:     c.token,
			Method:    method,
			Payload:   payload,
			RequestID: requestID,
		})
		if err != nil {
			c.clearLeaderHint()
			lastErr = err
			continue
		}
		if !dispatchResp.Success {
			if dispatchResp.LeaderId != "" {
				if hintID, perr := strconv.ParseUint(dispatchResp.LeaderId, 10, 32); perr == nil {
					c.setLeaderHint(uint32(hintID))
				}
			} else {
				c.clearLeaderHint()
			}
			lastErr = fmt.Errorf("router: %s", dispatchResp.Message)
			continue
		}

		out := new(Resp)
		md := metadata.Pairs(lmspb.RequestIDMetadataKey, requestID)
		fetchCtx := metadata.NewOutgoingContext(ctx, md)
		if err := conn.Invoke(fetchCtx, "/lms.LMS/"+method, req, out); err != nil {
			lastErr = err
			continue
		}
		return out, nil
	}
	return nil, fmt.Errorf("router: %s failed after %d attempts: %w", method, maxAttempts, lastErr)
}
