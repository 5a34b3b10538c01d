// Package raftpb defines the wire messages exchanged between Raft peers.
//
// The teacher repo generates these with protoc; without a protoc
// toolchain available here the messages are instead plain Go structs
// carried over grpc.ServiceDesc by hand (see service.go and codec.go),
// the same shape protoc-gen-go/protoc-gen-go-grpc would have produced.
// Field names and the Get* accessor convention match the generated-code
// idiom the teacher's raft.go already calls (req.GetTerm(), entry.GetId()).
package raftpb

// LogEntry is one entry in a node's replicated log.
type LogEntry struct {
	Term uint64
	Data []byte
}

func (e *LogEntry) GetTerm() uint64 {
	if e == nil {
		return 0
	}
	return e.Term
}

func (e *LogEntry) GetData() []byte {
	if e == nil {
		return nil
	}
	return e.Data
}

type AppendEntriesRequest struct {
	Term         uint64
	LeaderId     uint32
	PrevLogIndex uint64
	PrevLogTerm  uint64
	Entries      []*LogEntry
	LeaderCommit uint64
}

func (r *AppendEntriesRequest) GetTerm() uint64 {
	if r == nil {
		return 0
	}
	return r.Term
}

func (r *AppendEntriesRequest) GetLeaderId() uint32 {
	if r == nil {
		return 0
	}
	return r.LeaderId
}

func (r *AppendEntriesRequest) GetPrevLogIndex() uint64 {
	if r == nil {
		return 0
	}
	return r.PrevLogIndex
}

func (r *AppendEntriesRequest) GetPrevLogTerm() uint64 {
	if r == nil {
		return 0
	}
	return r.PrevLogTerm
}

func (r *AppendEntriesRequest) GetEntries() []*LogEntry {
	if r == nil {
		return nil
	}
	return r.Entries
}

func (r *AppendEntriesRequest) GetLeaderCommit() uint64 {
	if r == nil {
		return 0
	}
	return r.LeaderCommit
}

type AppendEntriesResponse struct {
	Term    uint64
	Success bool
}

func (r *AppendEntriesResponse) GetTerm() uint64 {
	if r == nil {
		return 0
	}
	return r.Term
}

func (r *AppendEntriesResponse) GetSuccess() bool {
	if r == nil {
		return false
	}
	return r.Success
}

type RequestVoteRequest struct {
	Term         uint64
	CandidateId  uint32
	LastLogIndex uint64
	LastLogTerm  uint64
}

func (r *RequestVoteRequest) GetTerm() uint64 {
	if r == nil {
		return 0
	}
	return r.Term
}

func (r *RequestVoteRequest) GetCandidateId() uint32 {
	if r == nil {
		return 0
	}
	return r.CandidateId
}

func (r *RequestVoteRequest) GetLastLogIndex() uint64 {
	if r == nil {
		return 0
	}
	return r.LastLogIndex
}

func (r *RequestVoteRequest) GetLastLogTerm() uint64 {
	if r == nil {
		return 0
	}
	return r.LastLogTerm
}

type RequestVoteResponse struct {
	Term        uint64
	VoteGranted bool
}

func (r *RequestVoteResponse) GetTerm() uint64 {
	if r == nil {
		return 0
	}
	return r.Term
}

func (r *RequestVoteResponse) GetVoteGranted() bool {
	if r == nil {
		return false
	}
	return r.VoteGranted
}

type ClientRequestMessage struct {
	Command []byte
}

func (r *ClientRequestMessage) GetCommand() []byte {
	if r == nil {
		return nil
	}
	return r.Command
}

type ClientResponseMessage struct {
	Success  bool
	Message  string
	LeaderId string
}

func (r *ClientResponseMessage) GetSuccess() bool {
	if r == nil {
		return false
	}
	return r.Success
}

func (r *ClientResponseMessage) GetMessage() string {
	if r == nil {
		return ""
	}
	return r.Message
}

func (r *ClientResponseMessage) GetLeaderId() string {
	if r == nil {
		return ""
	}
	return r.LeaderId
}
