package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no valid session")
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login checks the credentials and issues a signed session token.
	Login(ctx context.Context, email, password string) (string, error)

	// ParseToken verifies a token issued by Login.
	ParseToken(token string) (Session, error)

	// TTL is how long an issued token stays valid.
	TTL() time.Duration
}

// Session is the signed-in admin, established at sign-in and dropped at logout.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session the guard placed in ctx.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
