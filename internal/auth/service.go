// Package auth is the authentication gate in front of the ledger API:
// bcrypt-hashed credentials and HS256 bearer tokens.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bankledger/internal/domain"
)

var (
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	ErrInvalidEmail = errors.New("invalid email")
)

type Service struct {
	store    UserStore
	secret   []byte
	tokenTTL time.Duration
}

func NewService(store UserStore, secret []byte, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{store: store, secret: secret, tokenTTL: tokenTTL}
}

// Register creates a user and returns a signed token for it.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (domain.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, "", ErrInvalidEmail
	}
	if len(password) < 8 {
		return domain.User{}, "", ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", err
	}

	u, err := s.store.CreateUser(ctx, email, string(hashed), strings.TrimSpace(fullName))
	if err != nil {
		return domain.User{}, "", err
	}

	token, err := s.IssueToken(u.ID)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

// Login verifies credentials and returns a signed token. Unknown email and
// wrong password both surface as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(u.ID)
}
