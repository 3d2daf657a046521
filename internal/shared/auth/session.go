package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

const RoleAdmin = "admin"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")
)

// Session is the verified identity of the caller.
type Session struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

type sessionKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session, or nil when the caller is anonymous.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// RequireUser returns the active session or ErrNotAuthenticated.
// Call it before touching any storage on behalf of a user.
func RequireUser(ctx context.Context) (*Session, error) {
	s := FromContext(ctx)
	if s == nil || s.UserID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	return s, nil
}

// RequireAdmin is RequireUser plus the admin role.
func RequireAdmin(ctx context.Context) (*Session, error) {
	s, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !s.IsAdmin() {
		return nil, ErrForbidden
	}
	return s, nil
}
