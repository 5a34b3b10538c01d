package raft

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mokshajmera002/aos-lms-system/internal/raftpb"
)

func TestMemoryPersisterRoundTrip(t *testing.T) {
	p := NewMemoryPersister()

	loaded, err := p.LoadState()
	require.NoError(t, err)
	require.Equal(t, &PersistentState{}, loaded)

	want := &PersistentState{
		CurrentTerm: 5,
		VotedFor:    2,
		Log:         []*raftpb.LogEntry{{Term: 1, Data: []byte("x")}},
		CommitIndex: 1,
		LastApplied: 1,
	}
	require.NoError(t, p.SaveState(want))

	loaded, err = p.LoadState()
	require.NoError(t, err)
	require.Equal(t, want, loaded)
}

func TestBoltPersisterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p, err := NewBoltPersister(filepath.Join(dir, "raft.db"))
	require.NoError(t, err)
	defer p.Close()

	want := &PersistentState{
		CurrentTerm: 9,
		VotedFor:    3,
		Log: []*raftpb.LogEntry{
			{Term: 1, Data: []byte("one")},
			{Term: 2, Data: []byte("two")},
		},
		CommitIndex: 2,
		LastApplied: 2,
	}
	require.NoError(t, p.SaveState(want))

	loaded, err := p.LoadState()
	require.NoError(t, err)
	require.Equal(t, want, loaded)
}

func TestBoltPersisterSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raft.db")

	p1, err := NewBoltPersister(path)
	require.NoError(t, err)
	require.NoError(t, p1.SaveState(&PersistentState{CurrentTerm: 4, VotedFor: 1}))
	require.NoError(t, p1.Close())

	p2, err := NewBoltPersister(path)
	require.NoError(t, err)
	defer p2.Close()

	loaded, err := p2.LoadState()
	require.NoError(t, err)
	require.Equal(t, uint64(4), loaded.CurrentTerm)
	require.Equal(t, uint32(1), loaded.VotedFor)
}
