package lms

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mokshajmera002/aos-lms-system/internal/lmspb"
)

const tokenTTL = 24 * time.Hour

// claims is the JWT payload (spec.md §6: user_id, username, role, expiry).
type claims struct {
	UserID   int64          `json:"user_id"`
	Username string         `json:"username"`
	Role     lmspb.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// AuthContext is the authenticated caller a handler runs as.
// AuthContext.System set to true means the handler was invoked from the apply loop
// with authorization already checked once, at the leader, before the
// command entered the log (SPEC_FULL §4 resolution 6 — mirrors
// original_source's authenticate(context) bypass for context=None).
type AuthContext struct {
	UserID   int64
	Username string
	Role     lmspb.UserRole
	System   bool
}

func SystemContext() *AuthContext { return &AuthContext{System: true} }

// Authenticator issues and verifies tokens with a cluster-wide shared
// secret. The secret must be identical on every node: whichever node is
// leader when a token is issued may differ from the node a later
// request lands on, and every node must be able to verify it.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{secret: secret}
}

// IssueToken mints a token as of issuedAt — the leader-assigned
// timestamp from the command envelope, never time.Now() (SPEC_FULL §4
// resolution 1), so every replica that later verifies or re-derives
// this token's expiry agrees.
func (a *Authenticator) IssueToken(userID int64, username string, role lmspb.UserRole, issuedAt time.Time) (string, error) {
	c := claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("lms: sign token: %w", err)
	}
	return signed, nil
}

func (a *Authenticator) VerifyToken(tokenString string) (*AuthContext, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, ErrAuth
	}
	return &AuthContext{UserID: c.UserID, Username: c.Username, Role: c.Role}, nil
}

// HashPassword is called once by the leader at ClientRequest time,
// before CreateUser's command envelope is appended (SPEC_FULL §4
// resolution 2) — never independently by each replica at apply time,
// since bcrypt salts randomly per call.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("lms: hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
