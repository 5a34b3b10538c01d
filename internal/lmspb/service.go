package lmspb

import (
	"context"

	"google.golang.org/grpc"
)

// LMSServer is implemented by the application state machine's RPC
// front-end. UpdateLLMResponse is deliberately absent: it is only ever
// reached through the log by the LLM dispatcher, never called directly.
type LMSServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	CreateUser(context.Context, *CreateUserRequest) (*CreateUserResponse, error)
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
	PostContent(context.Context, *PostContentRequest) (*PostContentResponse, error)
	GetPosts(context.Context, *GetPostsRequest) (*GetPostsResponse, error)
	DownloadPost(context.Context, *DownloadPostRequest) (*DownloadPostResponse, error)
	UploadSolution(context.Context, *UploadSolutionRequest) (*UploadSolutionResponse, error)
	GetSolutions(context.Context, *GetSolutionsRequest) (*GetSolutionsResponse, error)
	DownloadSolution(context.Context, *DownloadSolutionRequest) (*DownloadSolutionResponse, error)
	AssignGrade(context.Context, *AssignGradeRequest) (*AssignGradeResponse, error)
	ViewGrades(context.Context, *ViewGradesRequest) (*ViewGradesResponse, error)
	PostQuery(context.Context, *PostQueryRequest) (*PostQueryResponse, error)
	GetQueries(context.Context, *GetQueriesRequest) (*GetQueriesResponse, error)
	PostReply(context.Context, *PostReplyRequest) (*PostReplyResponse, error)
	GetReplies(context.Context, *GetRepliesRequest) (*GetRepliesResponse, error)
	AddFeedback(context.Context, *AddFeedbackRequest) (*AddFeedbackResponse, error)
	GetAllGrades(context.Context, *GetAllGradesRequest) (*GetAllGradesResponse, error)
}

// UnimplementedLMSServer gives concrete servers forward compatibility,
// matching the protoc-gen-go-grpc convention.
type UnimplementedLMSServer struct{}

func (UnimplementedLMSServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, errUnimplementedLMS("Login")
}
func (UnimplementedLMSServer) CreateUser(context.Context, *CreateUserRequest) (*CreateUserResponse, error) {
	return nil, errUnimplementedLMS("CreateUser")
}
func (UnimplementedLMSServer) ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error) {
	return nil, errUnimplementedLMS("ListUsers")
}
func (UnimplementedLMSServer) PostContent(context.Context, *PostContentRequest) (*PostContentResponse, error) {
	return nil, errUnimplementedLMS("PostContent")
}
func (UnimplementedLMSServer) GetPosts(context.Context, *GetPostsRequest) (*GetPostsResponse, error) {
	return nil, errUnimplementedLMS("GetPosts")
}
func (UnimplementedLMSServer) DownloadPost(context.Context, *DownloadPostRequest) (*DownloadPostResponse, error) {
	return nil, errUnimplementedLMS("DownloadPost")
}
func (UnimplementedLMSServer) UploadSolution(context.Context, *UploadSolutionRequest) (*UploadSolutionResponse, error) {
	return nil, errUnimplementedLMS("UploadSolution")
}
func (UnimplementedLMSServer) GetSolutions(context.Context, *GetSolutionsRequest) (*GetSolutionsResponse, error) {
	return nil, errUnimplementedLMS("GetSolutions")
}
func (UnimplementedLMSServer) DownloadSolution(context.Context, *DownloadSolutionRequest) (*DownloadSolutionResponse, error) {
	return nil, errUnimplementedLMS("DownloadSolution")
}
func (UnimplementedLMSServer) AssignGrade(context.Context, *AssignGradeRequest) (*AssignGradeResponse, error) {
	return nil, errUnimplementedLMS("AssignGrade")
}
func (UnimplementedLMSServer) ViewGrades(context.Context, *ViewGradesRequest) (*ViewGradesResponse, error) {
	return nil, errUnimplementedLMS("ViewGrades")
}
func (UnimplementedLMSServer) PostQuery(context.Context, *PostQueryRequest) (*PostQueryResponse, error) {
	return nil, errUnimplementedLMS("PostQuery")
}
func (UnimplementedLMSServer) GetQueries(context.Context, *GetQueriesRequest) (*GetQueriesResponse, error) {
	return nil, errUnimplementedLMS("GetQueries")
}
func (UnimplementedLMSServer) PostReply(context.Context, *PostReplyRequest) (*PostReplyResponse, error) {
	return nil, errUnimplementedLMS("PostReply")
}
func (UnimplementedLMSServer) GetReplies(context.Context, *GetRepliesRequest) (*GetRepliesResponse, error) {
	return nil, errUnimplementedLMS("GetReplies")
}
func (UnimplementedLMSServer) AddFeedback(context.Context, *AddFeedbackRequest) (*AddFeedbackResponse, error) {
	return nil, errUnimplementedLMS("AddFeedback")
}
func (UnimplementedLMSServer) GetAllGrades(context.Context, *GetAllGradesRequest) (*GetAllGradesResponse, error) {
	return nil, errUnimplementedLMS("GetAllGrades")
}

type unimplementedLMSError string

func (e unimplementedLMSError) Error() string { return "lmspb: method " + string(e) + " not implemented" }

func errUnimplementedLMS(method string) error { return unimplementedLMSError(method) }

// unaryHandler builds a grpc.MethodDesc.Handler for one LMSServer method.
// Seventeen near-identical handlers would otherwise be hand-copied;
// generics (available since go1.18) collapse them to one definition
// instantiated per method below.
func unaryHandler[Req any, Resp any](call func(LMSServer, context.Context, *Req) (*Resp, error), fullMethod string) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LMSServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(LMSServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LMSServiceDesc is the grpc.ServiceDesc protoc-gen-go-grpc would emit
// for a service exposing these seventeen unary methods.
var LMSServiceDesc = grpc.ServiceDesc{
	ServiceName: "lms.LMS",
	HandlerType: (*LMSServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodLogin, Handler: unaryHandler[LoginRequest, LoginResponse](LMSServer.Login, "/lms.LMS/Login")},
		{MethodName: MethodCreateUser, Handler: unaryHandler[CreateUserRequest, CreateUserResponse](LMSServer.CreateUser, "/lms.LMS/CreateUser")},
		{MethodName: MethodListUsers, Handler: unaryHandler[ListUsersRequest, ListUsersResponse](LMSServer.ListUsers, "/lms.LMS/ListUsers")},
		{MethodName: MethodPostContent, Handler: unaryHandler[PostContentRequest, PostContentResponse](LMSServer.PostContent, "/lms.LMS/PostContent")},
		{MethodName: MethodGetPosts, Handler: unaryHandler[GetPostsRequest, GetPostsResponse](LMSServer.GetPosts, "/lms.LMS/GetPosts")},
		{MethodName: MethodDownloadPost, Handler: unaryHandler[DownloadPostRequest, DownloadPostResponse](LMSServer.DownloadPost, "/lms.LMS/DownloadPost")},
		{MethodName: MethodUploadSolution, Handler: unaryHandler[UploadSolutionRequest, UploadSolutionResponse](LMSServer.UploadSolution, "/lms.LMS/UploadSolution")},
		{MethodName: MethodGetSolutions, Handler: unaryHandler[GetSolutionsRequest, GetSolutionsResponse](LMSServer.GetSolutions, "/lms.LMS/GetSolutions")},
		{MethodName: MethodDownloadSolution, Handler: unaryHandler[DownloadSolutionRequest, DownloadSolutionResponse](LMSServer.DownloadSolution, "/lms.LMS/DownloadSolution")},
		{MethodName: MethodAssignGrade, Handler: unaryHandler[AssignGradeRequest, AssignGradeResponse](LMSServer.AssignGrade, "/lms.LMS/AssignGrade")},
		{MethodName: MethodViewGrades, Handler: unaryHandler[ViewGradesRequest, ViewGradesResponse](LMSServer.ViewGrades, "/lms.LMS/ViewGrades")},
		{MethodName: MethodPostQuery, Handler: unaryHandler[PostQueryRequest, PostQueryResponse](LMSServer.PostQuery, "/lms.LMS/PostQuery")},
		{MethodName: MethodGetQueries, Handler: unaryHandler[GetQueriesRequest, GetQueriesResponse](LMSServer.GetQueries, "/lms.LMS/GetQueries")},
		{MethodName: MethodPostReply, Handler: unaryHandler[PostReplyRequest, PostReplyResponse](LMSServer.PostReply, "/lms.LMS/PostReply")},
		{MethodName: MethodGetReplies, Handler: unaryHandler[GetRepliesRequest, GetRepliesResponse](LMSServer.GetReplies, "/lms.LMS/GetReplies")},
		{MethodName: MethodAddFeedback, Handler: unaryHandler[AddFeedbackRequest, AddFeedbackResponse](LMSServer.AddFeedback, "/lms.LMS/AddFeedback")},
		{MethodName: MethodGetAllGrades, Handler: unaryHandler[GetAllGradesRequest, GetAllGradesResponse](LMSServer.GetAllGrades, "/lms.LMS/GetAllGrades")},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lms.proto",
}

// RegisterLMSServer attaches srv's implementation to s.
func RegisterLMSServer(s grpc.ServiceRegistrar, srv LMSServer) {
	s.RegisterService(&LMSServiceDesc, srv)
}

func invokeUnary[Req any, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// LMSClient is the client-facing stub used by internal/router.
type LMSClient interface {
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*CreateUserResponse, error)
	ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error)
	PostContent(ctx context.Context, in *PostContentRequest, opts ...grpc.CallOption) (*PostContentResponse, error)
	GetPosts(ctx context.Context, in *GetPostsRequest, opts ...grpc.CallOption) (*GetPostsResponse, error)
	DownloadPost(ctx context.Context, in *DownloadPostRequest, opts ...grpc.CallOption) (*DownloadPostResponse, error)
	UploadSolution(ctx context.Context, in *UploadSolutionRequest, opts ...grpc.CallOption) (*UploadSolutionResponse, error)
	GetSolutions(ctx context.Context, in *GetSolutionsRequest, opts ...grpc.CallOption) (*GetSolutionsResponse, error)
	DownloadSolution(ctx context.Context, in *DownloadSolutionRequest, opts ...grpc.CallOption) (*DownloadSolutionResponse, error)
	AssignGrade(ctx context.Context, in *AssignGradeRequest, opts ...grpc.CallOption) (*AssignGradeResponse, error)
	ViewGrades(ctx context.Context, in *ViewGradesRequest, opts ...grpc.CallOption) (*ViewGradesResponse, error)
	PostQuery(ctx context.Context, in *PostQueryRequest, opts ...grpc.CallOption) (*PostQueryResponse, error)
	GetQueries(ctx context.Context, in *GetQueriesRequest, opts ...grpc.CallOption) (*GetQueriesResponse, error)
	PostReply(ctx context.Context, in *PostReplyRequest, opts ...grpc.CallOption) (*PostReplyResponse, error)
	GetReplies(ctx context.Context, in *GetRepliesRequest, opts ...grpc.CallOption) (*GetRepliesResponse, error)
	AddFeedback(ctx context.Context, in *AddFeedbackRequest, opts ...grpc.CallOption) (*AddFeedbackResponse, error)
	GetAllGrades(ctx context.Context, in *GetAllGradesRequest, opts ...grpc.CallOption) (*GetAllGradesResponse, error)
}

type lmsClient struct {
	cc grpc.ClientConnInterface
}

func NewLMSClient(cc grpc.ClientConnInterface) LMSClient { return &lmsClient{cc} }

func (c *lmsClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invokeUnary[LoginRequest, LoginResponse](ctx, c.cc, "/lms.LMS/Login", in, opts...)
}
func (c *lmsClient) CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*CreateUserResponse, error) {
	return invokeUnary[CreateUserRequest, CreateUserResponse](ctx, c.cc, "/lms.LMS/CreateUser", in, opts...)
}
func (c *lmsClient) ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	return invokeUnary[ListUsersRequest, ListUsersResponse](ctx, c.cc, "/lms.LMS/ListUsers", in, opts...)
}
func (c *lmsClient) PostContent(ctx context.Context, in *PostContentRequest, opts ...grpc.CallOption) (*PostContentResponse, error) {
	return invokeUnary[PostContentRequest, PostContentResponse](ctx, c.cc, "/lms.LMS/PostContent", in, opts...)
}
func (c *lmsClient) GetPosts(ctx context.Context, in *GetPostsRequest, opts ...grpc.CallOption) (*GetPostsResponse, error) {
	return invokeUnary[GetPostsRequest, GetPostsResponse](ctx, c.cc, "/lms.LMS/GetPosts", in, opts...)
}
func (c *lmsClient) DownloadPost(ctx context.Context, in *DownloadPostRequest, opts ...grpc.CallOption) (*DownloadPostResponse, error) {
	return invokeUnary[DownloadPostRequest, DownloadPostResponse](ctx, c.cc, "/lms.LMS/DownloadPost", in, opts...)
}
func (c *lmsClient) UploadSolution(ctx context.Context, in *UploadSolutionRequest, opts ...grpc.CallOption) (*UploadSolutionResponse, error) {
	return invokeUnary[UploadSolutionRequest, UploadSolutionResponse](ctx, c.cc, "/lms.LMS/UploadSolution", in, opts...)
}
func (c *lmsClient) GetSolutions(ctx context.Context, in *GetSolutionsRequest, opts ...grpc.CallOption) (*GetSolutionsResponse, error) {
	return invokeUnary[GetSolutionsRequest, GetSolutionsResponse](ctx, c.cc, "/lms.LMS/GetSolutions", in, opts...)
}
func (c *lmsClient) DownloadSolution(ctx context.Context, in *DownloadSolutionRequest, opts ...grpc.CallOption) (*DownloadSolutionResponse, error) {
	return invokeUnary[DownloadSolutionRequest, DownloadSolutionResponse](ctx, c.cc, "/lms.LMS/DownloadSolution", in, opts...)
}
func (c *lmsClient) AssignGrade(ctx context.Context, in *AssignGradeRequest, opts ...grpc.CallOption) (*AssignGradeResponse, error) {
	return invokeUnary[AssignGradeRequest, AssignGradeResponse](ctx, c.cc, "/lms.LMS/AssignGrade", in, opts...)
}
func (c *lmsClient) ViewGrades(ctx context.Context, in *ViewGradesRequest, opts ...grpc.CallOption) (*ViewGradesResponse, error) {
	return invokeUnary[ViewGradesRequest, ViewGradesResponse](ctx, c.cc, "/lms.LMS/ViewGrades", in, opts...)
}
func (c *lmsClient) PostQuery(ctx context.Context, in *PostQueryRequest, opts ...grpc.CallOption) (*PostQueryResponse, error) {
	return invokeUnary[PostQueryRequest, PostQueryResponse](ctx, c.cc, "/lms.LMS/PostQuery", in, opts...)
}
func (c *lmsClient) GetQueries(ctx context.Context, in *GetQueriesRequest, opts ...grpc.CallOption) (*GetQueriesResponse, error) {
	return invokeUnary[GetQueriesRequest, GetQueriesResponse](ctx, c.cc, "/lms.LMS/GetQueries", in, opts...)
}
func (c *lmsClient) PostReply(ctx context.Context, in *PostReplyRequest, opts ...grpc.CallOption) (*PostReplyResponse, error) {
	return invokeUnary[PostReplyRequest, PostReplyResponse](ctx, c.cc, "/lms.LMS/PostReply", in, opts...)
}
func (c *lmsClient) GetReplies(ctx context.Context, in *GetRepliesRequest, opts ...grpc.CallOption) (*GetRepliesResponse, error) {
	return invokeUnary[GetRepliesRequest, GetRepliesResponse](ctx, c.cc, "/lms.LMS/GetReplies", in, opts...)
}
func (c *lmsClient) AddFeedback(ctx context.Context, in *AddFeedbackRequest, opts ...grpc.CallOption) (*AddFeedbackResponse, error) {
	return invokeUnary[AddFeedbackRequest, AddFeedbackResponse](ctx, c.cc, "/lms.LMS/AddFeedback", in, opts...)
}
func (c *lmsClient) GetAllGrades(ctx context.Context, in *GetAllGradesRequest, opts ...grpc.CallOption) (*GetAllGradesResponse, error) {
	return invokeUnary[GetAllGradesRequest, GetAllGradesResponse](ctx, c.cc, "/lms.LMS/GetAllGrades", in, opts...)
}
