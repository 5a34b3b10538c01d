package raft

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/mokshajmera002/aos-lms-system/internal/raftpb"
)

// Peer is the outbound RPC surface to another node. Transport encryption
// is explicitly out of scope (spec.md Non-goals), hence insecure
// credentials below.
type Peer interface {
	AppendEntries(ctx context.Context, req *raftpb.AppendEntriesRequest) (*raftpb.AppendEntriesResponse, error)
	RequestVote(ctx context.Context, req *raftpb.RequestVoteRequest) (*raftpb.RequestVoteResponse, error)
	ClientRequest(ctx context.Context, req *raftpb.ClientRequestMessage) (*raftpb.ClientResponseMessage, error)
	Address() string
}

// grpcPeer lazily dials its address on first use and reuses the
// connection afterward.
type grpcPeer struct {
	addr string

	mu     sync.Mutex
	conn   *grpc.ClientConn
	client raftpb.RaftClient
}

func NewGRPCPeer(addr string) Peer {
	return &grpcPeer{addr: addr}
}

func (p *grpcPeer) Address() string { return p.addr }

func (p *grpcPeer) ensureClient() (raftpb.RaftClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	conn, err := grpc.NewClient(p.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrTransport, p.addr, err)
	}
	p.conn = conn
	p.client = raftpb.NewRaftClient(conn)
	return p.client, nil
}

func (p *grpcPeer) AppendEntries(ctx context.Context, req *raftpb.AppendEntriesRequest) (*raftpb.AppendEntriesResponse, error) {
	c, err := p.ensureClient()
	if err != nil {
		return nil, err
	}
	resp, err := c.AppendEntries(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}

func (p *grpcPeer) RequestVote(ctx context.Context, req *raftpb.RequestVoteRequest) (*raftpb.RequestVoteResponse, error) {
	c, err := p.ensureClient()
	if err != nil {
		return nil, err
	}
	resp, err := c.RequestVote(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}

func (p *grpcPeer) ClientRequest(ctx context.Context, req *raftpb.ClientRequestMessage) (*raftpb.ClientResponseMessage, error) {
	c, err := p.ensureClient()
	if err != nil {
		return nil, err
	}
	resp, err := c.ClientRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}
