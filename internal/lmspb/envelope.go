package lmspb

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// RequestIDMetadataKey carries a command's RequestID on the outgoing
// grpc context of the second hop of the client router's send pattern:
// the direct LMSServer call that fetches the result. The first hop (the
// gateway Dispatch call) carries the same id in DispatchRequest.RequestID.
const RequestIDMetadataKey = "x-request-id"

// Method names the command registry dispatches on. Kept as named
// constants rather than magic strings (internal/lms/machine.go keys a
// map[string]Handler on these).
const (
	MethodLogin             = "Login"
	MethodCreateUser        = "CreateUser"
	MethodListUsers         = "ListUsers"
	MethodPostContent       = "PostContent"
	MethodGetPosts          = "GetPosts"
	MethodDownloadPost      = "DownloadPost"
	MethodUploadSolution    = "UploadSolution"
	MethodGetSolutions      = "GetSolutions"
	MethodDownloadSolution  = "DownloadSolution"
	MethodAssignGrade       = "AssignGrade"
	MethodViewGrades        = "ViewGrades"
	MethodPostQuery         = "PostQuery"
	MethodGetQueries        = "GetQueries"
	MethodPostReply         = "PostReply"
	MethodGetReplies        = "GetReplies"
	MethodAddFeedback       = "AddFeedback"
	MethodGetAllGrades      = "GetAllGrades"
	MethodUpdateLLMResponse = "UpdateLLMResponse"
)

// CommandEnvelope is the value carried as the opaque command bytes of a
// Raft log entry (spec.md §3, §6). The replication engine never
// inspects it; internal/lms decodes and dispatches it.
//
// Timestamp and RequestID resolve the two determinism/dedup open
// questions in spec.md §9: Timestamp is assigned once, by the leader,
// at ClientRequest time, so every replica computing "now" from the
// envelope agrees; RequestID lets the application state machine
// recognize a replayed command and return the cached response instead
// of re-executing it.
type CommandEnvelope struct {
	Method    string
	Request   []byte
	Timestamp int64
	RequestID string
	UserID    int64 // authenticated caller, resolved by the leader before append
	Role      UserRole
}

func (e *CommandEnvelope) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, fmt.Errorf("lmspb: encode command envelope: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeEnvelope(data []byte) (*CommandEnvelope, error) {
	e := &CommandEnvelope{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(e); err != nil {
		return nil, fmt.Errorf("lmspb: decode command envelope: %w", err)
	}
	return e, nil
}

// MarshalRequest gob-encodes any concrete request/response struct. Every
// handler uses this symmetric pair instead of hand-writing per-type
// marshal code.
func MarshalRequest(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("lmspb: encode request: %w", err)
	}
	return buf.Bytes(), nil
}

func UnmarshalRequest(data []byte, v interface{}) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("lmspb: decode request: %w", err)
	}
	return nil
}
