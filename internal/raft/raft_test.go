package raft

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mokshajmera002/aos-lms-system/internal/raftpb"
)

// localPeer dispatches directly to another node's exported RPC methods,
// skipping the network entirely so cluster tests run in-process.
type localPeer struct {
	target *Raft
}

func (p *localPeer) Address() string { return "local" }

func (p *localPeer) AppendEntries(ctx context.Context, req *raftpb.AppendEntriesRequest) (*raftpb.AppendEntriesResponse, error) {
	return p.target.AppendEntries(ctx, req)
}

func (p *localPeer) RequestVote(ctx context.Context, req *raftpb.RequestVoteRequest) (*raftpb.RequestVoteResponse, error) {
	return p.target.RequestVote(ctx, req)
}

func (p *localPeer) ClientRequest(ctx context.Context, req *raftpb.ClientRequestMessage) (*raftpb.ClientResponseMessage, error) {
	return p.target.ClientRequest(ctx, req)
}

type fakeFSM struct {
	mu      sync.Mutex
	applied [][]byte
}

func (f *fakeFSM) apply(index uint64, cmd []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, cmd)
}

func (f *fakeFSM) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}

func fastTestConfig() *Config {
	return &Config{
		ElectionTimeoutMin:     30 * time.Millisecond,
		ElectionTimeoutMax:     60 * time.Millisecond,
		HeartbeatInterval:      10 * time.Millisecond,
		AppendEntriesTimeout:   200 * time.Millisecond,
		RequestVoteTimeoutMin:  50 * time.Millisecond,
		RequestVoteTimeoutMax:  100 * time.Millisecond,
		ClientRequestTimeout:   2 * time.Second,
	}
}

func newCluster(t *testing.T, n int) ([]*Raft, []*fakeFSM, context.CancelFunc) {
	t.Helper()
	nodes := make([]*Raft, n)
	fsms := make([]*fakeFSM, n)

	for i := 0; i < n; i++ {
		fsms[i] = &fakeFSM{}
	}
	for i := 0; i < n; i++ {
		id := uint32(i + 1)
		idx := i
		r, err := NewRaft(id, nil, NewMemoryPersister(), fastTestConfig(), nil, func(index uint64, cmd []byte) {
			fsms[idx].apply(index, cmd)
		})
		require.NoError(t, err)
		nodes[i] = r
	}
	for i := 0; i < n; i++ {
		peers := make(map[uint32]Peer, n-1)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			peers[uint32(j+1)] = &localPeer{target: nodes[j]}
		}
		nodes[i].peers = peers
	}

	ctx, cancel := context.WithCancel(context.Background())
	for _, r := range nodes {
		r.Run(ctx)
	}
	return nodes, fsms, cancel
}

func awaitLeader(t *testing.T, nodes []*Raft, timeout time.Duration) *Raft {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, n := range nodes {
			if n.Status().Role == Leader {
				return n
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no leader elected within timeout")
	return nil
}

func TestSingleNodeBecomesLeader(t *testing.T) {
	nodes, _, cancel := newCluster(t, 1)
	defer cancel()
	leader := awaitLeader(t, nodes, time.Second)
	require.Equal(t, uint32(1), leader.Status().ID)
}

func TestThreeNodeClusterElectsExactlyOneLeader(t *testing.T) {
	nodes, _, cancel := newCluster(t, 3)
	defer cancel()
	awaitLeader(t, nodes, 2*time.Second)

	time.Sleep(100 * time.Millisecond)
	leaders := 0
	for _, n := range nodes {
		if n.Status().Role == Leader {
			leaders++
		}
	}
	require.Equal(t, 1, leaders)
}

func TestClientRequestReplicatesToAllNodes(t *testing.T) {
	nodes, fsms, cancel := newCluster(t, 3)
	defer cancel()
	leader := awaitLeader(t, nodes, 2*time.Second)

	ctx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	resp, err := leader.ClientRequest(ctx, &raftpb.ClientRequestMessage{Command: []byte("hello")})
	require.NoError(t, err)
	require.True(t, resp.Success)

	require.Eventually(t, func() bool {
		for _, f := range fsms {
			if f.count() != 1 {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClientRequestRejectedByFollower(t *testing.T) {
	nodes, _, cancel := newCluster(t, 3)
	defer cancel()
	leader := awaitLeader(t, nodes, 2*time.Second)

	var follower *Raft
	for _, n := range nodes {
		if n != leader {
			follower = n
			break
		}
	}
	require.NotNil(t, follower)

	resp, err := follower.ClientRequest(context.Background(), &raftpb.ClientRequestMessage{Command: []byte("x")})
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, notLeaderMessage, resp.Message)
}

func TestStopFailsPendingWaiters(t *testing.T) {
	nodes, _, cancel := newCluster(t, 1)
	defer cancel()
	leader := awaitLeader(t, nodes, time.Second)

	leader.mu.Lock()
	leader.peers = map[uint32]Peer{2: &deadPeer{}}
	leader.mu.Unlock()

	done := make(chan *raftpb.ClientResponseMessage, 1)
	go func() {
		resp, _ := leader.ClientRequest(context.Background(), &raftpb.ClientRequestMessage{Command: []byte("y")})
		done <- resp
	}()

	time.Sleep(20 * time.Millisecond)
	leader.Stop()

	select {
	case resp := <-done:
		require.NotNil(t, resp)
		require.False(t, resp.Success)
	case <-time.After(time.Second):
		t.Fatal("ClientRequest did not return after Stop")
	}
}

type deadPeer struct{}

func (deadPeer) Address() string { return "dead" }
func (deadPeer) AppendEntries(context.Context, *raftpb.AppendEntriesRequest) (*raftpb.AppendEntriesResponse, error) {
	return nil, ErrTransport
}
func (deadPeer) RequestVote(context.Context, *raftpb.RequestVoteRequest) (*raftpb.RequestVoteResponse, error) {
	return nil, ErrTransport
}
func (deadPeer) ClientRequest(context.Context, *raftpb.ClientRequestMessage) (*raftpb.ClientResponseMessage, error) {
	return nil, ErrTransport
}
