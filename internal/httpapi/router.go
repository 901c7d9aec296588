package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

// NewApp assembles the fiber application: middleware, auth gate, routes.
func NewApp(h *Handlers, ah *AuthHandlers, authMW fiber.Handler, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(log),
	})

	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	app.Get("/healthz", h.Healthz)

	app.Post("/v1/auth/signup", ah.Signup)
	app.Post("/v1/auth/login", ah.Login)

	app.Post("/v1/accounts", authMW, h.CreateAccount)
	app.Get("/v1/accounts", authMW, h.ListAccounts)
	app.Get("/v1/accounts/:id", authMW, h.GetAccount)
	app.Get("/v1/accounts/:id/transactions", authMW, h.ListAccountTransactions)
	app.Post("/v1/transactions", authMW, h.CreateTransaction)

	return app
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		}
		if code >= 500 {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}
