package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is the adapter-level sentinel for an absent row. Store
// implementations return it; the processor translates it into the typed
// errors below before anything reaches a caller.
var ErrNotFound = errors.New("not found")

// AccountNotFoundError: the referenced account does not exist. No side
// effects have occurred.
type AccountNotFoundError struct {
	AccountID uuid.UUID
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.AccountID)
}

// InsufficientBalanceError: a withdrawal exceeded the current balance. The
// account was left untouched. Balance is the balance at the time of the
// check, for caller-facing diagnostics.
type InsufficientBalanceError struct {
	AccountID uuid.UUID
	Balance   decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for account %s: current balance %s", e.AccountID, e.Balance.StringFixed(2))
}

// InvalidAmountError: the requested amount is not strictly positive (or an
// opening balance is negative). Rejected before any store access.
type InvalidAmountError struct {
	Amount decimal.Decimal
	Reason string
}

func (e *InvalidAmountError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid amount %s: %s", e.Amount.StringFixed(2), e.Reason)
	}
	return fmt.Sprintf("invalid amount %s: amount must be greater than zero", e.Amount.StringFixed(2))
}

// InvalidTransactionError: the transaction type is not part of the closed
// deposit/withdrawal set.
type InvalidTransactionError struct {
	Type string
}

func (e *InvalidTransactionError) Error() string {
	return fmt.Sprintf("invalid transaction type %q", e.Type)
}

// StoreError wraps an adapter failure. Not recoverable within the engine;
// the atomic scope it occurred in has been rolled back.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
