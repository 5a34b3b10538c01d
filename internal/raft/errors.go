package raft

import "errors"

// Error kinds from spec.md §7. Callers classify with errors.Is.
var (
	// ErrNotLeader's text is the Message given to every outstanding
	// ClientRequest waiter when this node steps down or stops. A new
	// ClientRequest on a non-leader is instead answered with
	// Success=false, Message "Not the leader", and the last-known leader
	// hint in ClientResponseMessage.LeaderId.
	ErrNotLeader = errors.New("raft: not the leader")

	// ErrTermStale names the stale-term error kind. The engine does not
	// return it: an RPC or response with an older term is rejected or
	// ignored inline.
	ErrTermStale = errors.New("raft: stale term")

	// ErrLogConflict names a failed prevLogIndex/prevLogTerm check. The
	// engine does not return it: AppendEntries answers Success=false and
	// the leader retries with a lower nextIndex.
	ErrLogConflict = errors.New("raft: log consistency check failed")

	// ErrCommitTimeout's text is the Message of the Success=false response
	// ClientRequest gives when the appended entry does not commit before
	// Config.ClientRequestTimeout elapses. The client may retry; the
	// command may still commit later.
	ErrCommitTimeout = errors.New("raft: commit timed out")

	// ErrTransport wraps network/RPC failures talking to a peer.
	ErrTransport = errors.New("raft: transport error")

	// ErrStopped is returned by operations attempted after Stop.
	ErrStopped = errors.New("raft: node stopped")
)
