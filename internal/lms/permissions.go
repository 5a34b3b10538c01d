package lms

import (
	"fmt"

	"github.com/mokshajmera002/aos-lms-system/internal/lmspb"
)

// CheckPermission applies the role matrix from original_source/
// lms_raft_server.py. It runs once, at the leader, before a command is
// appended to the log (SPEC_FULL §4 resolution 6) — handlers invoked at
// apply time never call this again.
func CheckPermission(method string, role lmspb.UserRole) error {
	switch method {
	case lmspb.MethodLogin:
		return nil // unauthenticated by definition
	case lmspb.MethodPostContent:
		return requireRole(role, lmspb.RoleInstructor)
	case lmspb.MethodUploadSolution, lmspb.MethodViewGrades, lmspb.MethodPostQuery:
		return requireRole(role, lmspb.RoleStudent)
	case lmspb.MethodGetSolutions, lmspb.MethodDownloadSolution, lmspb.MethodAssignGrade,
		lmspb.MethodAddFeedback, lmspb.MethodGetAllGrades:
		return requireRole(role, lmspb.RoleInstructor)
	case lmspb.MethodPostReply:
		return requireRole(role, lmspb.RoleInstructor, lmspb.RoleAdmin)
	case lmspb.MethodCreateUser, lmspb.MethodListUsers:
		return requireRole(role, lmspb.RoleAdmin)
	case lmspb.MethodGetPosts, lmspb.MethodGetQueries, lmspb.MethodGetReplies, lmspb.MethodDownloadPost:
		return nil // any authenticated user
	case lmspb.MethodUpdateLLMResponse:
		return nil // internal-only, never reached from a client request
	default:
		return fmt.Errorf("lms: unknown method %q", method)
	}
}

func requireRole(have lmspb.UserRole, allowed ...lmspb.UserRole) error {
	for _, r := range allowed {
		if have == r {
			return nil
		}
	}
	return ErrPermission
}
