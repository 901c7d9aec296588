// Package httpapi exposes the ledger over HTTP. Handlers stay thin: parse,
// call the processor, map the typed failure to a status code.
package httpapi

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"bankledger/internal/auth"
	"bankledger/internal/domain"
	"bankledger/internal/ledger"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type Handlers struct {
	proc *ledger.Processor
}

func NewHandlers(proc *ledger.Processor) *Handlers {
	return &Handlers{proc: proc}
}

func (h *Handlers) Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

// POST /v1/accounts
func (h *Handlers) CreateAccount(c *fiber.Ctx) error {
	uid, err := auth.UserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	var req domain.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	acc, err := h.proc.CreateAccount(ctx, uid, req.Balance)
	if err != nil {
		return fail(err)
	}
	return c.Status(fiber.StatusCreated).JSON(acc)
}

// GET /v1/accounts
func (h *Handlers) ListAccounts(c *fiber.Ctx) error {
	limit, offset, err := parsePagination(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	accs, err := h.proc.Accounts(ctx, limit, offset)
	if err != nil {
		return fail(err)
	}
	return c.JSON(accs)
}

// GET /v1/accounts/:id
func (h *Handlers) GetAccount(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account id")
	}
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	acc, err := h.proc.Account(ctx, id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(acc)
}

// GET /v1/accounts/:id/transactions
func (h *Handlers) ListAccountTransactions(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account id")
	}
	limit, offset, err := parsePagination(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	txns, err := h.proc.AccountTransactions(ctx, id, limit, offset)
	if err != nil {
		return fail(err)
	}
	return c.JSON(txns)
}

// POST /v1/transactions
func (h *Handlers) CreateTransaction(c *fiber.Ctx) error {
	var req domain.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	txn, err := h.proc.Process(ctx, req.AccountID, req.Type, req.Amount)
	if err != nil {
		return fail(err)
	}
	return c.Status(fiber.StatusCreated).JSON(txn)
}

// parsePagination reads limit/offset query params with defaults and a max
// clamp. Malformed values are a 400, out-of-range ones are coerced.
func parsePagination(c *fiber.Ctx) (int, int, error) {
	limit := defaultLimit
	offset := 0

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fiber.NewError(fiber.StatusBadRequest, "invalid limit value")
		}
		limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fiber.NewError(fiber.StatusBadRequest, "invalid offset value")
		}
		offset = n
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset, nil
}
