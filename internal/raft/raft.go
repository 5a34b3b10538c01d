// Package raft implements the replication engine: leader election, log
// replication, commit advancement, and the opaque command-dispatch
// boundary to an application state machine. It never interprets the
// bytes inside a log entry; callers supply an ApplyFunc that does.
package raft

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mokshajmera002/aos-lms-system/internal/raftpb"
)

// ApplyFunc is invoked once, in log order, for every committed entry.
// The replication engine never inspects command bytes; decoding and
// dispatch are entirely the application's concern.
type ApplyFunc func(index uint64, command []byte)

// ApplyMsg mirrors what was applied, for observers/tests (the teacher
// repo exposes an analogous ApplyCh).
type ApplyMsg struct {
	Index   uint64
	Command []byte
}

type commitWaiter struct {
	done    chan struct{}
	once    sync.Once
	success bool
	message string
}

func (w *commitWaiter) respond(success bool, message string) {
	w.once.Do(func() {
		w.success = success
		w.message = message
		close(w.done)
	})
}

// Raft is one node's replication engine. All mutable fields are guarded
// by mu; a condition variable bound to the same lock signals commitIndex
// advances to the apply loop, and ClientRequest waiters are released
// through their per-index commitWaiter channels. Go's
// sync.Mutex is not reentrant, so only exported entry points and
// background loop bodies call mu.Lock/Unlock directly — everything else
// in this package assumes the caller already holds it (see state.go).
type Raft struct {
	mu   sync.Mutex
	cond *sync.Cond

	id        uint32
	peers     map[uint32]Peer
	persister Persister
	config    *Config
	logger    *zap.Logger
	applyFn   ApplyFunc

	role        Role
	currentTerm uint64
	votedFor    uint32
	log         []*raftpb.LogEntry
	commitIndex uint64
	lastApplied uint64

	nextIndex  map[uint32]uint64
	matchIndex map[uint32]uint64

	leaderId uint32
	hasLeader bool

	electionDeadline time.Time
	electionTerm     uint64
	votesGranted     int

	pendingCommits map[uint64][]*commitWaiter

	applyCh chan ApplyMsg
	stopCh  chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

// NewRaft constructs a node from persisted state (or zero-value state on
// first boot) but does not start any background goroutines; call Run.
func NewRaft(id uint32, peers map[uint32]Peer, persister Persister, config *Config, logger *zap.Logger, applyFn ApplyFunc) (*Raft, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	state, err := persister.LoadState()
	if err != nil {
		return nil, fmt.Errorf("raft: load persistent state: %w", err)
	}

	r := &Raft{
		id:             id,
		peers:          peers,
		persister:      persister,
		config:         config,
		logger:         logger.With(zap.Uint32("id", id)),
		applyFn:        applyFn,
		role:           Follower,
		currentTerm:    state.CurrentTerm,
		votedFor:       state.VotedFor,
		log:            state.Log,
		commitIndex:    state.CommitIndex,
		lastApplied:    state.LastApplied,
		nextIndex:      make(map[uint32]uint64),
		matchIndex:     make(map[uint32]uint64),
		pendingCommits: make(map[uint64][]*commitWaiter),
		applyCh:        make(chan ApplyMsg, 256),
		stopCh:         make(chan struct{}),
	}
	r.cond = sync.NewCond(&r.mu)
	r.resetElectionDeadlineLocked()
	return r, nil
}

// ApplyCh exposes every applied entry for observability and tests.
func (r *Raft) ApplyCh() <-chan ApplyMsg { return r.applyCh }

// Run starts the election timer, heartbeat, and apply background loops.
// It returns immediately; the node stops when ctx is cancelled or Stop
// is called.
func (r *Raft) Run(ctx context.Context) {
	r.wg.Add(3)
	go func() { defer r.wg.Done(); r.runElectionTimer(ctx) }()
	go func() { defer r.wg.Done(); r.runHeartbeat(ctx) }()
	go func() { defer r.wg.Done(); r.runApply(ctx) }()
	go func() {
		<-ctx.Done()
		r.Stop()
	}()
}

// Stop halts all background loops and fails any outstanding
// ClientRequest waiters with ErrNotLeader so callers can retry elsewhere.
func (r *Raft) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.resignPendingLocked()
	r.cond.Broadcast()
	r.mu.Unlock()
	close(r.stopCh)
	r.wg.Wait()
}

// IsLeader reports whether this node currently believes itself leader.
func (r *Raft) IsLeader() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.role == Leader
}

// Status is a snapshot of role/term/leader hint for diagnostics.
type Status struct {
	ID          uint32
	Role        Role
	CurrentTerm uint64
	LeaderID    uint32
	HasLeader   bool
	CommitIndex uint64
	LastApplied uint64
}

func (r *Raft) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		ID:          r.id,
		Role:        r.role,
		CurrentTerm: r.currentTerm,
		LeaderID:    r.leaderId,
		HasLeader:   r.hasLeader,
		CommitIndex: r.commitIndex,
		LastApplied: r.lastApplied,
	}
}

// --- RPC handlers (raftpb.RaftServer) ---

func (r *Raft) AppendEntries(ctx context.Context, req *raftpb.AppendEntriesRequest) (*raftpb.AppendEntriesResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.GetTerm() < r.currentTerm {
		return &raftpb.AppendEntriesResponse{Term: r.currentTerm, Success: false}, nil
	}
	if req.GetTerm() > r.currentTerm || r.role != Follower {
		r.becomeFollower(req.GetTerm())
	}
	r.leaderId = req.GetLeaderId()
	r.hasLeader = true
	r.resetElectionDeadlineLocked()

	prevIndex := req.GetPrevLogIndex()
	if prevIndex > 0 && r.termAt(prevIndex) != req.GetPrevLogTerm() {
		r.persistLocked()
		return &raftpb.AppendEntriesResponse{Term: r.currentTerm, Success: false}, nil
	}

	entries := req.GetEntries()
	for i, e := range entries {
		idx := prevIndex + uint64(i) + 1
		existing := r.logEntryAt(idx)
		if existing == nil {
			r.appendLogEntries(entries[i:])
			break
		}
		if existing.Term != e.Term {
			r.truncateLogFrom(idx)
			r.appendLogEntries(entries[i:])
			break
		}
		// entry already present and matching; keep scanning
	}

	if req.GetLeaderCommit() > r.commitIndex {
		newCommit := req.GetLeaderCommit()
		if last := r.lastLogIndex(); newCommit > last {
			newCommit = last
		}
		r.advanceCommitIndexLocked(newCommit)
	}

	r.persistLocked()
	return &raftpb.AppendEntriesResponse{Term: r.currentTerm, Success: true}, nil
}

func (r *Raft) RequestVote(ctx context.Context, req *raftpb.RequestVoteRequest) (*raftpb.RequestVoteResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.GetTerm() < r.currentTerm {
		return &raftpb.RequestVoteResponse{Term: r.currentTerm, VoteGranted: false}, nil
	}
	if req.GetTerm() > r.currentTerm {
		r.becomeFollower(req.GetTerm())
	}

	upToDate := req.GetLastLogTerm() > r.lastLogTerm() ||
		(req.GetLastLogTerm() == r.lastLogTerm() && req.GetLastLogIndex() >= r.lastLogIndex())

	granted := false
	if (r.votedFor == 0 || r.votedFor == req.GetCandidateId()) && upToDate {
		r.votedFor = req.GetCandidateId()
		granted = true
		r.resetElectionDeadlineLocked()
	}
	r.persistLocked()
	return &raftpb.RequestVoteResponse{Term: r.currentTerm, VoteGranted: granted}, nil
}

// notLeaderMessage is the exact redirect text spec.md §4.2 specifies.
const notLeaderMessage = "Not the leader"

// ClientRequest appends req.Command to the log if this node is leader
// and blocks until the entry commits, times out, or ctx is cancelled.
// It never waits for the entry to be applied (spec commit-before-ack).
// An empty command is a leader-liveness probe: it is never appended.
func (r *Raft) ClientRequest(ctx context.Context, req *raftpb.ClientRequestMessage) (*raftpb.ClientResponseMessage, error) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil, ErrStopped
	}
	if r.role != Leader {
		hint := ""
		if r.hasLeader {
			hint = fmt.Sprintf("%d", r.leaderId)
		}
		r.mu.Unlock()
		return &raftpb.ClientResponseMessage{Success: false, Message: notLeaderMessage, LeaderId: hint}, nil
	}
	if len(req.GetCommand()) == 0 {
		r.mu.Unlock()
		return &raftpb.ClientResponseMessage{Success: true}, nil
	}

	entry := &raftpb.LogEntry{Term: r.currentTerm, Data: req.GetCommand()}
	r.appendLogEntries([]*raftpb.LogEntry{entry})
	index := r.lastLogIndex()
	r.persistLocked()

	waiter := &commitWaiter{done: make(chan struct{})}
	r.pendingCommits[index] = append(r.pendingCommits[index], waiter)
	r.logger.Info("appended client command", zap.Uint64("index", index), zap.Uint64("term", entry.Term))
	r.broadcastAppendEntriesLocked()
	r.mu.Unlock()

	timer := time.NewTimer(r.config.ClientRequestTimeout)
	defer timer.Stop()

	select {
	case <-waiter.done:
		return &raftpb.ClientResponseMessage{Success: waiter.success, Message: waiter.message}, nil
	case <-timer.C:
		r.mu.Lock()
		removeWaiter(r.pendingCommits, index, waiter)
		r.mu.Unlock()
		return &raftpb.ClientResponseMessage{Success: false, Message: ErrCommitTimeout.Error()}, nil
	case <-ctx.Done():
		r.mu.Lock()
		removeWaiter(r.pendingCommits, index, waiter)
		r.mu.Unlock()
		return nil, ctx.Err()
	}
}

func removeWaiter(pending map[uint64][]*commitWaiter, index uint64, target *commitWaiter) {
	waiters := pending[index]
	for i, w := range waiters {
		if w == target {
			pending[index] = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(pending[index]) == 0 {
		delete(pending, index)
	}
}

// --- commit advancement ---

func (r *Raft) advanceCommitIndexLocked(newIndex uint64) {
	if newIndex <= r.commitIndex {
		return
	}
	r.commitIndex = newIndex
	for idx, waiters := range r.pendingCommits {
		if idx <= newIndex {
			for _, w := range waiters {
				w.respond(true, "Command accepted")
			}
			delete(r.pendingCommits, idx)
		}
	}
	r.cond.Broadcast()
}

func (r *Raft) advanceLeaderCommitLocked() {
	for n := r.lastLogIndex(); n > r.commitIndex; n-- {
		if r.termAt(n) != r.currentTerm {
			continue // never directly commit an entry from an earlier term
		}
		count := 1 // self
		for id := range r.peers {
			if r.matchIndex[id] >= n {
				count++
			}
		}
		if count >= r.quorumSize() {
			r.advanceCommitIndexLocked(n)
			return
		}
	}
}

// --- election ---

func (r *Raft) runElectionTimer(ctx context.Context) {
	for {
		r.mu.Lock()
		deadline := r.electionDeadline
		stopped := r.stopped
		r.mu.Unlock()
		if stopped {
			return
		}
		wait := time.Until(deadline)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-time.After(wait):
			r.mu.Lock()
			if r.stopped || r.role == Leader || time.Now().Before(r.electionDeadline) {
				r.mu.Unlock()
				continue
			}
			r.startElectionLocked()
			r.mu.Unlock()
		}
	}
}

func (r *Raft) resetElectionDeadlineLocked() {
	r.electionDeadline = time.Now().Add(r.randomElectionTimeout())
}

func (r *Raft) randomElectionTimeout() time.Duration {
	lo, hi := r.config.ElectionTimeoutMin, r.config.ElectionTimeoutMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo)))
}

func (r *Raft) randomRequestVoteTimeout() time.Duration {
	lo, hi := r.config.RequestVoteTimeoutMin, r.config.RequestVoteTimeoutMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo)))
}

func (r *Raft) startElectionLocked() {
	r.currentTerm++
	r.role = Candidate
	r.votedFor = r.id
	r.votesGranted = 1
	r.electionTerm = r.currentTerm
	r.resetElectionDeadlineLocked()
	r.persistLocked()

	if len(r.peers) == 0 {
		r.becomeLeaderLocked()
		return
	}

	req := &raftpb.RequestVoteRequest{
		Term:         r.currentTerm,
		CandidateId:  r.id,
		LastLogIndex: r.lastLogIndex(),
		LastLogTerm:  r.lastLogTerm(),
	}
	r.logger.Info("starting election", zap.Uint64("term", r.currentTerm))
	for id, peer := range r.peers {
		id, peer := id, peer
		go r.sendRequestVote(id, peer, req)
	}
}

func (r *Raft) sendRequestVote(id uint32, peer Peer, req *raftpb.RequestVoteRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), r.randomRequestVoteTimeout())
	defer cancel()
	resp, err := peer.RequestVote(ctx, req)
	if err != nil {
		r.logger.Debug("request vote failed", zap.Uint32("peer", id), zap.Error(err))
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if resp.GetTerm() > r.currentTerm {
		r.becomeFollower(resp.GetTerm())
		r.persistLocked()
		return
	}
	if r.role != Candidate || req.Term != r.electionTerm || req.Term != r.currentTerm {
		return // stale response from a prior election round
	}
	if !resp.GetVoteGranted() {
		return
	}
	r.votesGranted++
	if r.votesGranted >= r.quorumSize() {
		r.becomeLeaderLocked()
	}
}

func (r *Raft) becomeLeaderLocked() {
	r.role = Leader
	r.leaderId = r.id
	r.hasLeader = true
	last := r.lastLogIndex()
	r.nextIndex = make(map[uint32]uint64, len(r.peers))
	r.matchIndex = make(map[uint32]uint64, len(r.peers))
	for id := range r.peers {
		r.nextIndex[id] = last + 1
		r.matchIndex[id] = 0
	}
	r.logger.Info("became leader", zap.Uint64("term", r.currentTerm))
	r.broadcastAppendEntriesLocked()
}

// --- replication ---

func (r *Raft) runHeartbeat(ctx context.Context) {
	ticker := time.NewTicker(r.config.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.role == Leader {
				r.broadcastAppendEntriesLocked()
			}
			r.mu.Unlock()
		}
	}
}

func (r *Raft) broadcastAppendEntriesLocked() {
	for id, peer := range r.peers {
		next := r.nextIndex[id]
		if next == 0 {
			next = r.lastLogIndex() + 1
		}
		prevIndex := next - 1
		prevTerm := r.termAt(prevIndex)
		var entries []*raftpb.LogEntry
		if r.lastLogIndex() >= next {
			entries = append(entries, r.log[next-1:]...)
		}
		req := &raftpb.AppendEntriesRequest{
			Term:         r.currentTerm,
			LeaderId:     r.id,
			PrevLogIndex: prevIndex,
			PrevLogTerm:  prevTerm,
			Entries:      entries,
			LeaderCommit: r.commitIndex,
		}
		id, peer := id, peer
		go r.sendAppendEntries(id, peer, req)
	}
}

func (r *Raft) sendAppendEntries(id uint32, peer Peer, req *raftpb.AppendEntriesRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.AppendEntriesTimeout)
	defer cancel()
	resp, err := peer.AppendEntries(ctx, req)
	if err != nil {
		r.logger.Debug("append entries failed", zap.Uint32("peer", id), zap.Error(err))
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if resp.GetTerm() > r.currentTerm {
		r.becomeFollower(resp.GetTerm())
		r.persistLocked()
		return
	}
	if r.role != Leader || req.Term != r.currentTerm {
		return
	}
	if resp.GetSuccess() {
		matched := req.PrevLogIndex + uint64(len(req.Entries))
		if matched > r.matchIndex[id] {
			r.matchIndex[id] = matched
		}
		if matched+1 > r.nextIndex[id] {
			r.nextIndex[id] = matched + 1
		}
		r.advanceLeaderCommitLocked()
		return
	}
	if r.nextIndex[id] > 1 {
		r.nextIndex[id]--
	}
}

// --- apply loop ---

func (r *Raft) runApply(ctx context.Context) {
	for {
		r.mu.Lock()
		for r.lastApplied >= r.commitIndex && !r.stopped {
			r.cond.Wait()
		}
		if r.stopped {
			r.mu.Unlock()
			return
		}
		index := r.lastApplied + 1
		entry := r.logEntryAt(index)
		r.mu.Unlock()

		if entry == nil {
			continue
		}
		if r.applyFn != nil {
			r.applyFn(index, entry.Data)
		}

		r.mu.Lock()
		r.lastApplied = index
		r.persistLocked()
		r.mu.Unlock()

		select {
		case r.applyCh <- ApplyMsg{Index: index, Command: entry.Data}:
		default:
			r.logger.Warn("apply observability channel full, dropping", zap.Uint64("index", index))
		}
	}
}

// --- persistence ---

func (r *Raft) persistLocked() {
	err := r.persister.SaveState(&PersistentState{
		CurrentTerm: r.currentTerm,
		VotedFor:    r.votedFor,
		Log:         r.log,
		CommitIndex: r.commitIndex,
		LastApplied: r.lastApplied,
	})
	if err != nil {
		r.logger.Fatal("persist state failed", zap.Error(err))
	}
}
