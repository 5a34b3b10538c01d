package lms

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/mokshajmera002/aos-lms-system/internal/lmspb"
)

func decode[T any](env *lmspb.CommandEnvelope) (*T, error) {
	req := new(T)
	if err := lmspb.UnmarshalRequest(env.Request, req); err != nil {
		return nil, err
	}
	return req, nil
}

func marshal(v interface{}) ([]byte, error) { return lmspb.MarshalRequest(v) }

func isUniqueConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

func handleLogin(m *Machine, env *lmspb.CommandEnvelope, _ *AuthContext) ([]byte, error) {
	req, err := decode[lmspb.LoginRequest](env)
	if err != nil {
		return nil, err
	}
	var id int64
	var hash string
	var role lmspb.UserRole
	row := m.db.conn.QueryRow(`SELECT id, password, role FROM users WHERE username = ?`, req.Username)
	if err := row.Scan(&id, &hash, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAuth
		}
		return nil, fmt.Errorf("lms: login query: %w", err)
	}
	if !checkPassword(hash, req.Password) {
		return nil, ErrAuth
	}
	token, err := m.auth.IssueToken(id, req.Username, role, time.Unix(env.Timestamp, 0).UTC())
	if err != nil {
		return nil, err
	}
	return marshal(&lmspb.LoginResponse{Token: token, UserID: id, Username: req.Username, Role: role})
}

func handleCreateUser(m *Machine, env *lmspb.CommandEnvelope, _ *AuthContext) ([]byte, error) {
	req, err := decode[lmspb.CreateUserRequest](env)
	if err != nil {
		return nil, err
	}
	res, err := m.db.conn.Exec(`INSERT INTO users (username, password, role) VALUES (?, ?, ?)`,
		req.Username, req.PasswordHash, req.Role)
	if err != nil {
		if isUniqueConstraint(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("lms: create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return marshal(&lmspb.CreateUserResponse{UserID: id})
}

func handleListUsers(m *Machine, _ *lmspb.CommandEnvelope, _ *AuthContext) ([]byte, error) {
	rows, err := m.db.conn.Query(`SELECT id, username, role FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("lms: list users: %w", err)
	}
	defer rows.Close()

	var out lmspb.ListUsersResponse
	for rows.Next() {
		var u lmspb.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
			return nil, err
		}
		out.Users = append(out.Users, u)
	}
	return marshal(&out)
}

func handlePostContent(m *Machine, env *lmspb.CommandEnvelope, _ *AuthContext) ([]byte, error) {
	req, err := decode[lmspb.PostContentRequest](env)
	if err != nil {
		return nil, err
	}
	res, err := m.db.conn.Exec(`INSERT INTO posts (title, description, type, filename, content, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		req.Title, req.Description, req.Type, req.Filename, req.Content, env.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("lms: post content: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return marshal(&lmspb.PostContentResponse{PostID: id})
}

func handleGetPosts(m *Machine, _ *lmspb.CommandEnvelope, _ *AuthContext) ([]byte, error) {
	rows, err := m.db.conn.Query(`SELECT id, title, description, type, filename, timestamp FROM posts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("lms: get posts: %w", err)
	}
	defer rows.Close()

	var out lmspb.GetPostsResponse
	for rows.Next() {
		var p lmspb.PostSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Type, &p.Filename, &p.Timestamp); err != nil {
			return nil, err
		}
		out.Posts = append(out.Posts, p)
	}
	return marshal(&out)
}

func handleDownloadPost(m *Machine, env *lmspb.CommandEnvelope, _ *AuthContext) ([]byte, error) {
	req, err := decode[lmspb.DownloadPostRequest](env)
	if err != nil {
		return nil, err
	}
	var filename string
	var content []byte
	row := m.db.conn.QueryRow(`SELECT filename, content FROM posts WHERE id = ?`, req.PostID)
	if err := row.Scan(&filename, &content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lms: download post: %w", err)
	}
	return marshal(&lmspb.DownloadPostResponse{Filename: filename, Content: content})
}

func handleUploadSolution(m *Machine, env *lmspb.CommandEnvelope, auth *AuthContext) ([]byte, error) {
	req, err := decode[lmspb.UploadSolutionRequest](env)
	if err != nil {
		return nil, err
	}
	res, err := m.db.conn.Exec(`INSERT INTO solutions (post_id, student_id, filename, content, timestamp) VALUES (?, ?, ?, ?, ?)`,
		req.PostID, auth.UserID, req.Filename, req.Content, env.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("lms: upload solution: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return marshal(&lmspb.UploadSolutionResponse{SolutionID: id})
}

func handleGetSolutions(m *Machine, env *lmspb.CommandEnvelope, _ *AuthContext) ([]byte, error) {
	req, err := decode[lmspb.GetSolutionsRequest](env)
	if err != nil {
		return nil, err
	}
	rows, err := m.db.conn.Query(`
		SELECT s.id, s.student_id, u.username, s.filename, s.timestamp, s.grade, s.feedback
		FROM solutions s JOIN users u ON u.id = s.student_id
		WHERE s.post_id = ? ORDER BY s.id`, req.PostID)
	if err != nil {
		return nil, fmt.Errorf("lms: get solutions: %w", err)
	}
	defer rows.Close()

	var out lmspb.GetSolutionsResponse
	for rows.Next() {
		var s lmspb.SolutionSummary
		var grade sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.StudentID, &s.Username, &s.Filename, &s.Timestamp, &grade, &s.Feedback); err != nil {
			return nil, err
		}
		if grade.Valid {
			s.Grade = &grade.Float64
		}
		out.Solutions = append(out.Solutions, s)
	}
	return marshal(&out)
}

func handleDownloadSolution(m *Machine, env *lmspb.CommandEnvelope, _ *AuthContext) ([]byte, error) {
	req, err := decode[lmspb.DownloadSolutionRequest](env)
	if err != nil {
		return nil, err
	}
	var filename string
	var content []byte
	row := m.db.conn.QueryRow(`SELECT filename, content FROM solutions WHERE id = ?`, req.SolutionID)
	if err := row.Scan(&filename, &content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lms: download solution: %w", err)
	}
	return marshal(&lmspb.DownloadSolutionResponse{Filename: filename, Content: content})
}

func handleAssignGrade(m *Machine, env *lmspb.CommandEnvelope, _ *AuthContext) ([]byte, error) {
	req, err := decode[lmspb.AssignGradeRequest](env)
	if err != nil {
		return nil, err
	}
	res, err := m.db.conn.Exec(`UPDATE solutions SET grade = ? WHERE id = ?`, req.Grade, req.SolutionID)
	if err != nil {
		return nil, fmt.Errorf("lms: assign grade: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return marshal(&lmspb.AssignGradeResponse{})
}

func handleViewGrades(m *Machine, _ *lmspb.CommandEnvelope, auth *AuthContext) ([]byte, error) {
	rows, err := m.db.conn.Query(`
		SELECT p.id, p.title, s.grade, s.feedback
		FROM solutions s JOIN posts p ON p.id = s.post_id
		WHERE s.student_id = ? ORDER BY s.id`, auth.UserID)
	if err != nil {
		return nil, fmt.Errorf("lms: view grades: %w", err)
	}
	defer rows.Close()

	var out lmspb.ViewGradesResponse
	for rows.Next() {
		var g lmspb.GradeSummary
		var grade sql.NullFloat64
		if err := rows.Scan(&g.PostID, &g.Title, &grade, &g.Feedback); err != nil {
			return nil, err
		}
		if grade.Valid {
			g.Grade = &grade.Float64
		}
		out.Grades = append(out.Grades, g)
	}
	return marshal(&out)
}

func handlePostQuery(m *Machine, env *lmspb.CommandEnvelope, auth *AuthContext) ([]byte, error) {
	req, err := decode[lmspb.PostQueryRequest](env)
	if err != nil {
		return nil, err
	}
	response := ""
	if req.Target == lmspb.TargetLLM {
		response = lmspb.LLMPendingResponse
	}
	res, err := m.db.conn.Exec(`INSERT INTO queries (student_id, content, timestamp, target, llm_response) VALUES (?, ?, ?, ?, ?)`,
		auth.UserID, req.Content, env.Timestamp, req.Target, response)
	if err != nil {
		return nil, fmt.Errorf("lms: post query: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return marshal(&lmspb.PostQueryResponse{QueryID: id})
}

func handleGetQueries(m *Machine, _ *lmspb.CommandEnvelope, _ *AuthContext) ([]byte, error) {
	rows, err := m.db.conn.Query(`
		SELECT q.id, q.student_id, u.username, q.content, q.timestamp, q.target, q.llm_response
		FROM queries q JOIN users u ON u.id = q.student_id
		ORDER BY q.id`)
	if err != nil {
		return nil, fmt.Errorf("lms: get queries: %w", err)
	}
	defer rows.Close()

	var out lmspb.GetQueriesResponse
	for rows.Next() {
		var q lmspb.QuerySummary
		if err := rows.Scan(&q.ID, &q.StudentID, &q.Username, &q.Content, &q.Timestamp, &q.Target, &q.LLMResponse); err != nil {
			return nil, err
		}
		out.Queries = append(out.Queries, q)
	}
	return marshal(&out)
}

func handlePostReply(m *Machine, env *lmspb.CommandEnvelope, auth *AuthContext) ([]byte, error) {
	req, err := decode[lmspb.PostReplyRequest](env)
	if err != nil {
		return nil, err
	}
	res, err := m.db.conn.Exec(`INSERT INTO replies (query_id, user_id, content, timestamp) VALUES (?, ?, ?, ?)`,
		req.QueryID, auth.UserID, req.Content, env.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("lms: post reply: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return marshal(&lmspb.PostReplyResponse{ReplyID: id})
}

func handleGetReplies(m *Machine, env *lmspb.CommandEnvelope, _ *AuthContext) ([]byte, error) {
	req, err := decode[lmspb.GetRepliesRequest](env)
	if err != nil {
		return nil, err
	}
	rows, err := m.db.conn.Query(`
		SELECT r.id, r.user_id, u.username, r.content, r.timestamp
		FROM replies r JOIN users u ON u.id = r.user_id
		WHERE r.query_id = ? ORDER BY r.id`, req.QueryID)
	if err != nil {
		return nil, fmt.Errorf("lms: get replies: %w", err)
	}
	defer rows.Close()

	var out lmspb.GetRepliesResponse
	for rows.Next() {
		var r lmspb.ReplySummary
		if err := rows.Scan(&r.ID, &r.UserID, &r.Username, &r.Content, &r.Timestamp); err != nil {
			return nil, err
		}
		out.Replies = append(out.Replies, r)
	}
	return marshal(&out)
}

func handleAddFeedback(m *Machine, env *lmspb.CommandEnvelope, _ *AuthContext) ([]byte, error) {
	req, err := decode[lmspb.AddFeedbackRequest](env)
	if err != nil {
		return nil, err
	}
	res, err := m.db.conn.Exec(`UPDATE solutions SET feedback = ? WHERE id = ?`, req.Feedback, req.SolutionID)
	if err != nil {
		return nil, fmt.Errorf("lms: add feedback: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return marshal(&lmspb.AddFeedbackResponse{})
}

func handleGetAllGrades(m *Machine, _ *lmspb.CommandEnvelope, _ *AuthContext) ([]byte, error) {
	rows, err := m.db.conn.Query(`
		SELECT u.id, u.username, p.id, p.title, s.grade
		FROM solutions s
		JOIN users u ON u.id = s.student_id
		JOIN posts p ON p.id = s.post_id
		ORDER BY u.id, p.id`)
	if err != nil {
		return nil, fmt.Errorf("lms: get all grades: %w", err)
	}
	defer rows.Close()

	var out lmspb.GetAllGradesResponse
	for rows.Next() {
		var g lmspb.StudentGradeSummary
		var grade sql.NullFloat64
		if err := rows.Scan(&g.StudentID, &g.Username, &g.PostID, &g.Title, &grade); err != nil {
			return nil, err
		}
		if grade.Valid {
			g.Grade = &grade.Float64
		}
		out.Grades = append(out.Grades, g)
	}
	return marshal(&out)
}

func handleUpdateLLMResponse(m *Machine, env *lmspb.CommandEnvelope, _ *AuthContext) ([]byte, error) {
	req, err := decode[lmspb.UpdateLLMResponseRequest](env)
	if err != nil {
		return nil, err
	}
	res, err := m.db.conn.Exec(`UPDATE queries SET llm_response = ? WHERE id = ?`, req.Text, req.QueryID)
	if err != nil {
		return nil, fmt.Errorf("lms: update llm response: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return marshal(&lmspb.UpdateLLMResponseResponse{})
}
