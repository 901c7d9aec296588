package auth

import (
	"context"
	"errors"

	"bankledger/internal/domain"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserStore is the persistence surface the auth service depends on.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash, fullName string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}
