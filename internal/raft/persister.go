package raft

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/mokshajmera002/aos-lms-system/internal/raftpb"
)

// PersistentState is everything a node must durably record before it is
// safe to reply to an RPC or acknowledge a commit (spec.md §4.1 ordering:
// currentTerm, votedFor, and log entries persist before their effects are
// ever observable to another node).
type PersistentState struct {
	CurrentTerm uint64
	VotedFor    uint32
	Log         []*raftpb.LogEntry
	CommitIndex uint64
	LastApplied uint64
}

// Persister durably stores and recovers a node's PersistentState. The
// teacher repo takes a Persister interface with the same save/load shape;
// BoltPersister below is this repo's implementation, grounded on the
// bbolt usage in cuemby-warren.
type Persister interface {
	SaveState(*PersistentState) error
	LoadState() (*PersistentState, error)
}

var bucketName = []byte("raft")
var stateKey = []byte("state")

// BoltPersister durably stores PersistentState as a single gob-encoded
// value in a bbolt database file. bbolt commits are copy-on-write and
// fsynced by default, giving the same atomic-replace durability the
// teacher's persistence model requires without hand-rolling a
// temp-file-then-rename dance.
type BoltPersister struct {
	db *bbolt.DB
}

func NewBoltPersister(path string) (*BoltPersister, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("raft: open persistent store: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("raft: init persistent store: %w", err)
	}
	return &BoltPersister{db: db}, nil
}

func (p *BoltPersister) Close() error { return p.db.Close() }

func (p *BoltPersister) SaveState(s *PersistentState) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("raft: encode persistent state: %w", err)
	}
	err := p.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(stateKey, buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("raft: save persistent state: %w", err)
	}
	return nil
}

func (p *BoltPersister) LoadState() (*PersistentState, error) {
	s := &PersistentState{}
	var raw []byte
	err := p.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get(stateKey)
		if v != nil {
			raw = append(raw, v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("raft: load persistent state: %w", err)
	}
	if raw == nil {
		return s, nil
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(s); err != nil {
		return nil, fmt.Errorf("raft: decode persistent state: %w", err)
	}
	return s, nil
}

// MemoryPersister is an in-memory Persister for tests.
type MemoryPersister struct {
	state *PersistentState
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{state: &PersistentState{}}
}

func (p *MemoryPersister) SaveState(s *PersistentState) error {
	cp := *s
	cp.Log = append([]*raftpb.LogEntry(nil), s.Log...)
	p.state = &cp
	return nil
}

func (p *MemoryPersister) LoadState() (*PersistentState, error) {
	cp := *p.state
	cp.Log = append([]*raftpb.LogEntry(nil), p.state.Log...)
	return &cp, nil
}
