// Command client is the non-interactive CLI for the LMS cluster: one
// subcommand per operation, talking to the cluster through
// internal/router's two-hop send pattern.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mokshajmera002/aos-lms-system/internal/lmspb"
	"github.com/mokshajmera002/aos-lms-system/internal/raftpb"
	"github.com/mokshajmera002/aos-lms-system/internal/router"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "client",
		Short: "Command-line client for the LMS Raft cluster",
	}
	root.PersistentFlags().String("nodes", "", "comma-separated id=addr pairs for every known node, e.g. 1=127.0.0.1:8000,2=127.0.0.1:8001")
	root.PersistentFlags().String("token-file", defaultTokenPath(), "where the bearer token from login is cached")
	root.MarkPersistentFlagRequired("nodes")

	root.AddCommand(
		loginCmd(),
		createUserCmd(),
		listUsersCmd(),
		postContentCmd(),
		getPostsCmd(),
		downloadPostCmd(),
		uploadSolutionCmd(),
		getSolutionsCmd(),
		downloadSolutionCmd(),
		assignGradeCmd(),
		viewGradesCmd(),
		postQueryCmd(),
		getQueriesCmd(),
		postReplyCmd(),
		getRepliesCmd(),
		addFeedbackCmd(),
		getAllGradesCmd(),
	)
	return root
}

func defaultTokenPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".lms-client-token")
	}
	return ".lms-client-token"
}

func parseNodes(s string) (map[uint32]string, error) {
	nodes := make(map[uint32]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed --nodes entry %q, want id=addr", pair)
		}
		id, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("malformed node id %q: %w", parts[0], err)
		}
		nodes[uint32(id)] = parts[1]
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("--nodes must list at least one node")
	}
	return nodes, nil
}

func newClient(cmd *cobra.Command) (*router.Client, error) {
	raftpb.RegisterCodec()

	nodesFlag, err := cmd.Flags().GetString("nodes")
	if err != nil {
		return nil, err
	}
	nodes, err := parseNodes(nodesFlag)
	if err != nil {
		return nil, err
	}
	c := router.New(nodes, zap.NewNop())

	tokenFile, err := cmd.Flags().GetString("token-file")
	if err != nil {
		return nil, err
	}
	if token, err := os.ReadFile(tokenFile); err == nil {
		c.SetToken(strings.TrimSpace(string(token)))
	}
	return c, nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func call[Req any, Resp any](cmd *cobra.Command, method string, req *Req) (*Resp, error) {
	client, err := newClient(cmd)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return router.Call[Req, Resp](cmd.Context(), client, method, req)
}

func parseRole(s string) (lmspb.UserRole, error) {
	switch strings.ToLower(s) {
	case "student":
		return lmspb.RoleStudent, nil
	case "instructor":
		return lmspb.RoleInstructor, nil
	case "admin":
		return lmspb.RoleAdmin, nil
	default:
		return 0, fmt.Errorf("unknown role %q (want student, instructor, or admin)", s)
	}
}

func parsePostType(s string) (lmspb.PostType, error) {
	switch strings.ToLower(s) {
	case "assignment":
		return lmspb.PostAssignment, nil
	case "material":
		return lmspb.PostMaterial, nil
	case "announcement":
		return lmspb.PostAnnouncement, nil
	default:
		return 0, fmt.Errorf("unknown post type %q (want assignment, material, or announcement)", s)
	}
}

func parseQueryTarget(s string) (lmspb.QueryTarget, error) {
	switch strings.ToLower(s) {
	case "professor":
		return lmspb.TargetProfessor, nil
	case "llm":
		return lmspb.TargetLLM, nil
	default:
		return 0, fmt.Errorf("unknown query target %q (want professor or llm)", s)
	}
}

func loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and cache a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call[lmspb.LoginRequest, lmspb.LoginResponse](cmd, lmspb.MethodLogin, &lmspb.LoginRequest{
				Username: username, Password: password,
			})
			if err != nil {
				return err
			}
			tokenFile, _ := cmd.Flags().GetString("token-file")
			if err := os.WriteFile(tokenFile, []byte(resp.Token), 0o600); err != nil {
				return fmt.Errorf("cache token: %w", err)
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "")
	cmd.Flags().StringVar(&password, "password", "", "")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func createUserCmd() *cobra.Command {
	var username, password, role string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRole(role)
			if err != nil {
				return err
			}
			resp, err := call[lmspb.CreateUserRequest, lmspb.CreateUserResponse](cmd, lmspb.MethodCreateUser, &lmspb.CreateUserRequest{
				Username: username, Password: password, Role: r,
			})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "")
	cmd.Flags().StringVar(&password, "password", "", "")
	cmd.Flags().StringVar(&role, "role", "student", "student, instructor, or admin")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-users",
		Short: "List all users (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call[lmspb.ListUsersRequest, lmspb.ListUsersResponse](cmd, lmspb.MethodListUsers, &lmspb.ListUsersRequest{})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
}

func postContentCmd() *cobra.Command {
	var title, description, typeFlag, file string
	cmd := &cobra.Command{
		Use:   "post-content",
		Short: "Post assignment/material/announcement content (instructor only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parsePostType(typeFlag)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			resp, err := call[lmspb.PostContentRequest, lmspb.PostContentResponse](cmd, lmspb.MethodPostContent, &lmspb.PostContentRequest{
				Title: title, Description: description, Type: t, Filename: filepath.Base(file), Content: content,
			})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "")
	cmd.Flags().StringVar(&description, "description", "", "")
	cmd.Flags().StringVar(&typeFlag, "type", "material", "assignment, material, or announcement")
	cmd.Flags().StringVar(&file, "file", "", "path to the file to attach")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("file")
	return cmd
}

func getPostsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-posts",
		Short: "List all posted content",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call[lmspb.GetPostsRequest, lmspb.GetPostsResponse](cmd, lmspb.MethodGetPosts, &lmspb.GetPostsRequest{})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
}

func downloadPostCmd() *cobra.Command {
	var postID int64
	var out string
	cmd := &cobra.Command{
		Use:   "download-post",
		Short: "Download a post's attached file",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call[lmspb.DownloadPostRequest, lmspb.DownloadPostResponse](cmd, lmspb.MethodDownloadPost, &lmspb.DownloadPostRequest{PostID: postID})
			if err != nil {
				return err
			}
			return writeDownload(out, resp.Filename, resp.Content)
		},
	}
	cmd.Flags().Int64Var(&postID, "post-id", 0, "")
	cmd.Flags().StringVar(&out, "out", "", "destination path (defaults to the post's filename)")
	cmd.MarkFlagRequired("post-id")
	return cmd
}

func uploadSolutionCmd() *cobra.Command {
	var postID int64
	var file string
	cmd := &cobra.Command{
		Use:   "upload-solution",
		Short: "Upload a solution to a post (student only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			resp, err := call[lmspb.UploadSolutionRequest, lmspb.UploadSolutionResponse](cmd, lmspb.MethodUploadSolution, &lmspb.UploadSolutionRequest{
				PostID: postID, Filename: filepath.Base(file), Content: content,
			})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().Int64Var(&postID, "post-id", 0, "")
	cmd.Flags().StringVar(&file, "file", "", "")
	cmd.MarkFlagRequired("post-id")
	cmd.MarkFlagRequired("file")
	return cmd
}

func getSolutionsCmd() *cobra.Command {
	var postID int64
	cmd := &cobra.Command{
		Use:   "get-solutions",
		Short: "List solutions submitted for a post (instructor only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call[lmspb.GetSolutionsRequest, lmspb.GetSolutionsResponse](cmd, lmspb.MethodGetSolutions, &lmspb.GetSolutionsRequest{PostID: postID})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().Int64Var(&postID, "post-id", 0, "")
	cmd.MarkFlagRequired("post-id")
	return cmd
}

func downloadSolutionCmd() *cobra.Command {
	var solutionID int64
	var out string
	cmd := &cobra.Command{
		Use:   "download-solution",
		Short: "Download a submitted solution (instructor only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call[lmspb.DownloadSolutionRequest, lmspb.DownloadSolutionResponse](cmd, lmspb.MethodDownloadSolution, &lmspb.DownloadSolutionRequest{SolutionID: solutionID})
			if err != nil {
				return err
			}
			return writeDownload(out, resp.Filename, resp.Content)
		},
	}
	cmd.Flags().Int64Var(&solutionID, "solution-id", 0, "")
	cmd.Flags().StringVar(&out, "out", "", "destination path (defaults to the solution's filename)")
	cmd.MarkFlagRequired("solution-id")
	return cmd
}

func assignGradeCmd() *cobra.Command {
	var solutionID int64
	var grade float64
	cmd := &cobra.Command{
		Use:   "assign-grade",
		Short: "Assign a grade to a solution (instructor only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call[lmspb.AssignGradeRequest, lmspb.AssignGradeResponse](cmd, lmspb.MethodAssignGrade, &lmspb.AssignGradeRequest{SolutionID: solutionID, Grade: grade})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().Int64Var(&solutionID, "solution-id", 0, "")
	cmd.Flags().Float64Var(&grade, "grade", 0, "")
	cmd.MarkFlagRequired("solution-id")
	cmd.MarkFlagRequired("grade")
	return cmd
}

func viewGradesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view-grades",
		Short: "View your own grades (student only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call[lmspb.ViewGradesRequest, lmspb.ViewGradesResponse](cmd, lmspb.MethodViewGrades, &lmspb.ViewGradesRequest{})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
}

func postQueryCmd() *cobra.Command {
	var content, target string
	cmd := &cobra.Command{
		Use:   "post-query",
		Short: "Post a question to a professor or the LLM assistant (student only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseQueryTarget(target)
			if err != nil {
				return err
			}
			resp, err := call[lmspb.PostQueryRequest, lmspb.PostQueryResponse](cmd, lmspb.MethodPostQuery, &lmspb.PostQueryRequest{Content: content, Target: t})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "")
	cmd.Flags().StringVar(&target, "target", "professor", "professor or llm")
	cmd.MarkFlagRequired("content")
	return cmd
}

func getQueriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-queries",
		Short: "List all posted queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call[lmspb.GetQueriesRequest, lmspb.GetQueriesResponse](cmd, lmspb.MethodGetQueries, &lmspb.GetQueriesRequest{})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
}

func postReplyCmd() *cobra.Command {
	var queryID int64
	var content string
	cmd := &cobra.Command{
		Use:   "post-reply",
		Short: "Reply to a query (instructor or admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call[lmspb.PostReplyRequest, lmspb.PostReplyResponse](cmd, lmspb.MethodPostReply, &lmspb.PostReplyRequest{QueryID: queryID, Content: content})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().Int64Var(&queryID, "query-id", 0, "")
	cmd.Flags().StringVar(&content, "content", "", "")
	cmd.MarkFlagRequired("query-id")
	cmd.MarkFlagRequired("content")
	return cmd
}

func getRepliesCmd() *cobra.Command {
	var queryID int64
	cmd := &cobra.Command{
		Use:   "get-replies",
		Short: "List replies to a query",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call[lmspb.GetRepliesRequest, lmspb.GetRepliesResponse](cmd, lmspb.MethodGetReplies, &lmspb.GetRepliesRequest{QueryID: queryID})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().Int64Var(&queryID, "query-id", 0, "")
	cmd.MarkFlagRequired("query-id")
	return cmd
}

func addFeedbackCmd() *cobra.Command {
	var solutionID int64
	var feedback string
	cmd := &cobra.Command{
		Use:   "add-feedback",
		Short: "Attach feedback to a solution (instructor only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call[lmspb.AddFeedbackRequest, lmspb.AddFeedbackResponse](cmd, lmspb.MethodAddFeedback, &lmspb.AddFeedbackRequest{SolutionID: solutionID, Feedback: feedback})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().Int64Var(&solutionID, "solution-id", 0, "")
	cmd.Flags().StringVar(&feedback, "feedback", "", "")
	cmd.MarkFlagRequired("solution-id")
	cmd.MarkFlagRequired("feedback")
	return cmd
}

func getAllGradesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-all-grades",
		Short: "List every student's grades across every post (instructor only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call[lmspb.GetAllGradesRequest, lmspb.GetAllGradesResponse](cmd, lmspb.MethodGetAllGrades, &lmspb.GetAllGradesRequest{})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
}

func writeDownload(out, filename string, content []byte) error {
	if out == "" {
		out = filename
	}
	if err := os.WriteFile(out, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Println("saved", out)
	return nil
}
