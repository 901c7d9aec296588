package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userIDLocal = "user_id"

// IssueToken signs an HS256 token carrying the user id and an expiry.
func (s *Service) IssueToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyToken parses and validates a bearer token and returns the user id.
func (s *Service) VerifyToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidCredentials
	}
	rawUID, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidCredentials
	}
	uid, err := uuid.Parse(rawUID)
	if err != nil {
		return uuid.Nil, ErrInvalidCredentials
	}
	return uid, nil
}

// Middleware gates protected routes on a valid Authorization bearer token
// and stashes the user id in the request locals.
func (s *Service) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "missing auth token")
		}
		uid, err := s.VerifyToken(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals(userIDLocal, uid)
		return c.Next()
	}
}

// UserID returns the authenticated user id set by Middleware.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	uid, ok := c.Locals(userIDLocal).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user not authenticated")
	}
	return uid, nil
}
