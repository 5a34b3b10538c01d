package lms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mokshajmera002/aos-lms-system/internal/lmspb"
)

func TestIssueAndVerifyToken(t *testing.T) {
	auth := NewAuthenticator([]byte("test-secret"))
	issuedAt := time.Unix(1_700_000_000, 0).UTC()

	token, err := auth.IssueToken(42, "alice", lmspb.RoleInstructor, issuedAt)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ctx, err := auth.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), ctx.UserID)
	require.Equal(t, "alice", ctx.Username)
	require.Equal(t, lmspb.RoleInstructor, ctx.Role)
	require.False(t, ctx.System)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0).UTC()
	token, err := NewAuthenticator([]byte("secret-a")).IssueToken(1, "bob", lmspb.RoleStudent, issuedAt)
	require.NoError(t, err)

	_, err = NewAuthenticator([]byte("secret-b")).VerifyToken(token)
	require.ErrorIs(t, err, ErrAuth)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0).UTC()
	auth := NewAuthenticator([]byte("test-secret"))
	token, err := auth.IssueToken(1, "bob", lmspb.RoleStudent, issuedAt.Add(-2*tokenTTL))
	require.NoError(t, err)

	_, err = auth.VerifyToken(token)
	require.ErrorIs(t, err, ErrAuth)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", hash)

	require.True(t, checkPassword(hash, "correct horse"))
	require.False(t, checkPassword(hash, "wrong password"))
}
