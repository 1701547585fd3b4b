package user

import (
	"context"
	"errors"
)

var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidEmail    = errors.New("email is required")
	ErrPasswordTooWeak = errors.New("password must be at least 8 characters")
)

// Service defines the interface for admin account business logic.
type Service interface {
	RegisterUser(ctx context.Context, email, password, firstName, lastName string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
}
