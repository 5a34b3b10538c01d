package raft

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mokshajmera002/aos-lms-system/internal/raftpb"
)

func newTestRaft(t *testing.T) *Raft {
	t.Helper()
	r, err := NewRaft(1, map[uint32]Peer{}, NewMemoryPersister(), DefaultConfig(), nil, nil)
	require.NoError(t, err)
	return r
}

func TestLogHelpers(t *testing.T) {
	r := newTestRaft(t)

	require.Equal(t, uint64(0), r.lastLogIndex())
	require.Equal(t, uint64(0), r.lastLogTerm())
	require.Nil(t, r.logEntryAt(1))

	r.appendLogEntries([]*raftpb.LogEntry{
		{Term: 1, Data: []byte("a")},
		{Term: 1, Data: []byte("b")},
		{Term: 2, Data: []byte("c")},
	})

	require.Equal(t, uint64(3), r.lastLogIndex())
	require.Equal(t, uint64(2), r.lastLogTerm())
	require.Equal(t, uint64(1), r.termAt(1))
	require.Equal(t, uint64(2), r.termAt(3))
	require.Equal(t, []byte("b"), r.logEntryAt(2).Data)

	r.truncateLogFrom(2)
	require.Equal(t, uint64(1), r.lastLogIndex())
	require.Equal(t, []byte("a"), r.logEntryAt(1).Data)
}

func TestTruncateLogFromZero(t *testing.T) {
	r := newTestRaft(t)
	r.appendLogEntries([]*raftpb.LogEntry{{Term: 1, Data: []byte("x")}})
	r.truncateLogFrom(0)
	require.Equal(t, uint64(0), r.lastLogIndex())
}

func TestQuorumSize(t *testing.T) {
	r := newTestRaft(t)
	r.peers = map[uint32]Peer{2: nil, 3: nil}
	require.Equal(t, 2, r.quorumSize())

	r.peers = map[uint32]Peer{2: nil, 3: nil, 4: nil, 5: nil}
	require.Equal(t, 3, r.quorumSize())
}

func TestBecomeFollowerClearsVoteOnNewTerm(t *testing.T) {
	r := newTestRaft(t)
	r.currentTerm = 3
	r.votedFor = 7
	r.role = Candidate

	r.becomeFollower(3)
	require.Equal(t, Follower, r.role)
	require.Equal(t, uint32(7), r.votedFor, "same term keeps the vote")

	r.becomeFollower(4)
	require.Equal(t, uint64(4), r.currentTerm)
	require.Equal(t, uint32(0), r.votedFor, "new term clears the vote")
}
