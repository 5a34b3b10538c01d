package raft

import "github.com/mokshajmera002/aos-lms-system/internal/raftpb"

// Role is a node's current position in the Raft role state machine
// (spec.md §4.1).
type Role int

const (
	Follower Role = iota
	Candidate
	Leader
)

func (r Role) String() string {
	switch r {
	case Follower:
		return "follower"
	case Candidate:
		return "candidate"
	case Leader:
		return "leader"
	default:
		return "unknown"
	}
}

// The methods below assume the caller already holds r.mu. None of them
// acquire or release the lock themselves; Go's sync.Mutex is not
// reentrant, so the discipline replacing a reentrant lock is that only
// exported entry points (RPC handlers, background loop bodies) call
// mu.Lock/Unlock, and every helper below is written to assume that's
// already true.

// lastLogIndex returns the 1-based index of the last log entry, or 0 if
// the log is empty.
func (r *Raft) lastLogIndex() uint64 {
	return uint64(len(r.log))
}

// lastLogTerm returns the term of the last log entry, or 0 if empty.
func (r *Raft) lastLogTerm() uint64 {
	if len(r.log) == 0 {
		return 0
	}
	return r.log[len(r.log)-1].Term
}

// logEntryAt returns the entry at 1-based index, or nil if index is 0 or
// out of range.
func (r *Raft) logEntryAt(index uint64) *raftpb.LogEntry {
	if index == 0 || index > uint64(len(r.log)) {
		return nil
	}
	return r.log[index-1]
}

// termAt returns the term of the entry at 1-based index, or 0 if there is
// no such entry (index 0 is the term-0 sentinel before the log starts).
func (r *Raft) termAt(index uint64) uint64 {
	e := r.logEntryAt(index)
	if e == nil {
		return 0
	}
	return e.Term
}

// appendLogEntries appends entries to the end of the log.
func (r *Raft) appendLogEntries(entries []*raftpb.LogEntry) {
	r.log = append(r.log, entries...)
}

// truncateLogFrom removes every entry from 1-based index onward
// (inclusive), used when a follower's log conflicts with the leader's.
func (r *Raft) truncateLogFrom(index uint64) {
	if index == 0 {
		r.log = r.log[:0]
		return
	}
	if index > uint64(len(r.log)) {
		return
	}
	r.log = r.log[:index-1]
}

// becomeFollower transitions to Follower for newTerm, clearing vote
// state when the term has actually advanced.
func (r *Raft) becomeFollower(newTerm uint64) {
	if newTerm > r.currentTerm {
		r.currentTerm = newTerm
		r.votedFor = 0
	}
	r.role = Follower
	r.resignPendingLocked()
}

// resignPendingLocked fails every outstanding ClientRequest waiter with
// ErrNotLeader; called whenever this node stops believing it is leader.
func (r *Raft) resignPendingLocked() {
	for idx, waiters := range r.pendingCommits {
		for _, w := range waiters {
			w.respond(false, ErrNotLeader.Error())
		}
		delete(r.pendingCommits, idx)
	}
}

// quorumSize is the number of nodes (including self) required for a
// majority over the full peer set.
func (r *Raft) quorumSize() int {
	return (len(r.peers)+1)/2 + 1
}
