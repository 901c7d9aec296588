package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"bankledger/internal/auth"
	"bankledger/internal/domain"
)

type AuthHandlers struct {
	svc *auth.Service
}

func NewAuthHandlers(svc *auth.Service) *AuthHandlers {
	return &AuthHandlers{svc: svc}
}

// POST /v1/auth/signup
func (h *AuthHandlers) Signup(c *fiber.Ctx) error {
	var req domain.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password required")
	}

	_, token, err := h.svc.Register(c.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		return fail(err)
	}
	return c.Status(fiber.StatusCreated).JSON(domain.TokenResponse{Token: token})
}

// POST /v1/auth/login
func (h *AuthHandlers) Login(c *fiber.Ctx) error {
	var req domain.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	token, err := h.svc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return fail(err)
	}
	return c.JSON(domain.TokenResponse{Token: token})
}
