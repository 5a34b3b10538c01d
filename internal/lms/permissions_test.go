package lms

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mokshajmera002/aos-lms-system/internal/lmspb"
)

func TestCheckPermissionMatrix(t *testing.T) {
	cases := []struct {
		method string
		role   lmspb.UserRole
		wantOK bool
	}{
		{lmspb.MethodLogin, lmspb.RoleStudent, true},
		{lmspb.MethodPostContent, lmspb.RoleInstructor, true},
		{lmspb.MethodPostContent, lmspb.RoleStudent, false},
		{lmspb.MethodUploadSolution, lmspb.RoleStudent, true},
		{lmspb.MethodUploadSolution, lmspb.RoleInstructor, false},
		{lmspb.MethodAssignGrade, lmspb.RoleInstructor, true},
		{lmspb.MethodAssignGrade, lmspb.RoleStudent, false},
		{lmspb.MethodPostReply, lmspb.RoleInstructor, true},
		{lmspb.MethodPostReply, lmspb.RoleAdmin, true},
		{lmspb.MethodPostReply, lmspb.RoleStudent, false},
		{lmspb.MethodCreateUser, lmspb.RoleAdmin, true},
		{lmspb.MethodCreateUser, lmspb.RoleInstructor, false},
		{lmspb.MethodGetPosts, lmspb.RoleStudent, true},
		{lmspb.MethodGetPosts, lmspb.RoleInstructor, true},
	}

	for _, c := range cases {
		err := CheckPermission(c.method, c.role)
		if c.wantOK {
			require.NoError(t, err, "%s as %s", c.method, c.role)
		} else {
			require.ErrorIs(t, err, ErrPermission, "%s as %s", c.method, c.role)
		}
	}
}

func TestCheckPermissionUnknownMethod(t *testing.T) {
	err := CheckPermission("NotAMethod", lmspb.RoleAdmin)
	require.Error(t, err)
}
