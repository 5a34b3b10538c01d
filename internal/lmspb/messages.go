// Package lmspb defines the wire messages for the learning-management
// application service, and the opaque command envelope carried inside
// Raft log entries. Like internal/raftpb, these are plain Go structs
// carried over a hand-written grpc.ServiceDesc rather than
// protoc-generated types — see internal/raftpb's package doc for why.
package lmspb

// UserRole enumerates the three application roles (spec.md §6).
type UserRole int32

const (
	RoleStudent UserRole = iota
	RoleInstructor
	RoleAdmin
)

func (r UserRole) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleInstructor:
		return "instructor"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// PostType enumerates the kinds of content an instructor can post.
type PostType int32

const (
	PostAssignment PostType = iota
	PostMaterial
	PostAnnouncement
)

// QueryTarget says who a student query is addressed to.
type QueryTarget int32

const (
	TargetProfessor QueryTarget = iota
	TargetLLM
)

// LLMPendingResponse is the placeholder text a PostQuery(target=llm)
// handler stores at apply time, before the background dispatcher
// replaces it with UpdateLLMResponse. Carried over verbatim from
// original_source/lms_raft_server.py for fidelity.
const LLMPendingResponse = "LLM response pending..."

// --- Login ---

type LoginRequest struct {
	Username string
	Password string
}

type LoginResponse struct {
	Token    string
	UserID   int64
	Username string
	Role     UserRole
}

// --- CreateUser ---

type CreateUserRequest struct {
	Username     string
	Password     string // plaintext, set by the client; the gateway hashes it into PasswordHash and clears it before the command ever reaches the log
	PasswordHash string // pre-hashed by the leader; see SPEC_FULL §4 resolution 2 — this is what handlers and replicas ever see
	Role         UserRole
}

type CreateUserResponse struct {
	UserID int64
}

// --- ListUsers ---

type ListUsersRequest struct{}

type UserSummary struct {
	ID       int64
	Username string
	Role     UserRole
}

type ListUsersResponse struct {
	Users []UserSummary
}

// --- PostContent ---

type PostContentRequest struct {
	Title       string
	Description string
	Type        PostType
	Filename    string
	Content     []byte
}

type PostContentResponse struct {
	PostID int64
}

// --- GetPosts ---

type GetPostsRequest struct{}

type PostSummary struct {
	ID          int64
	Title       string
	Description string
	Type        PostType
	Filename    string
	Timestamp   int64
}

type GetPostsResponse struct {
	Posts []PostSummary
}

// --- DownloadPost ---

type DownloadPostRequest struct {
	PostID int64
}

type DownloadPostResponse struct {
	Filename string
	Content  []byte
}

// --- UploadSolution ---

type UploadSolutionRequest struct {
	PostID   int64
	Filename string
	Content  []byte
}

type UploadSolutionResponse struct {
	SolutionID int64
}

// --- GetSolutions ---

type GetSolutionsRequest struct {
	PostID int64
}

type SolutionSummary struct {
	ID        int64
	StudentID int64
	Username  string
	Filename  string
	Timestamp int64
	Grade     *float64
	Feedback  string
}

type GetSolutionsResponse struct {
	Solutions []SolutionSummary
}

// --- DownloadSolution ---

type DownloadSolutionRequest struct {
	SolutionID int64
}

type DownloadSolutionResponse struct {
	Filename string
	Content  []byte
}

// --- AssignGrade ---

type AssignGradeRequest struct {
	SolutionID int64
	Grade      float64
}

type AssignGradeResponse struct{}

// --- ViewGrades ---

type ViewGradesRequest struct{}

type GradeSummary struct {
	PostID   int64
	Title    string
	Grade    *float64
	Feedback string
}

type ViewGradesResponse struct {
	Grades []GradeSummary
}

// --- PostQuery ---

type PostQueryRequest struct {
	Content string
	Target  QueryTarget
}

type PostQueryResponse struct {
	QueryID int64
}

// --- GetQueries ---

type GetQueriesRequest struct{}

type QuerySummary struct {
	ID          int64
	StudentID   int64
	Username    string
	Content     string
	Timestamp   int64
	Target      QueryTarget
	LLMResponse string
}

type GetQueriesResponse struct {
	Queries []QuerySummary
}

// --- PostReply ---

type PostReplyRequest struct {
	QueryID int64
	Content string
}

type PostReplyResponse struct {
	ReplyID int64
}

// --- GetReplies ---

type GetRepliesRequest struct {
	QueryID int64
}

type ReplySummary struct {
	ID        int64
	UserID    int64
	Username  string
	Content   string
	Timestamp int64
}

type GetRepliesResponse struct {
	Replies []ReplySummary
}

// --- AddFeedback ---

type AddFeedbackRequest struct {
	SolutionID int64
	Feedback   string
}

type AddFeedbackResponse struct{}

// --- GetAllGrades ---

type GetAllGradesRequest struct{}

type StudentGradeSummary struct {
	StudentID int64
	Username  string
	PostID    int64
	Title     string
	Grade     *float64
}

type GetAllGradesResponse struct {
	Grades []StudentGradeSummary
}

// --- UpdateLLMResponse (internal-only; never exposed as a direct RPC,
// only ever reached through the log via the LLM dispatcher) ---

type UpdateLLMResponseRequest struct {
	QueryID int64
	Text    string
}

type UpdateLLMResponseResponse struct{}
