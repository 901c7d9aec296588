package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"bankledger/internal/auth"
	"bankledger/internal/ledger"
)

func statusForErr(err error) int {
	var (
		invalidAmount *ledger.InvalidAmountError
		invalidType   *ledger.InvalidTransactionError
		notFound      *ledger.AccountNotFoundError
		insufficient  *ledger.InsufficientBalanceError
	)

	switch {
	case err == nil:
		return http.StatusOK

	// Engine-level semantic errors
	case errors.As(err, &invalidAmount), errors.As(err, &invalidType):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &insufficient):
		return http.StatusConflict

	// Auth
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail):
		return http.StatusBadRequest

	// Context / timeouts
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout

	default:
		return http.StatusInternalServerError
	}
}

func publicErrMessage(code int, err error) string {
	// Don't leak internals on 5xx.
	if code >= 500 {
		return "internal error"
	}
	return err.Error()
}

func fail(err error) error {
	code := statusForErr(err)
	return fiber.NewError(code, publicErrMessage(code, err))
}
