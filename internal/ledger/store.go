package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bankledger/internal/domain"
)

// AccountStore is the read/write surface for account rows. Absent rows
// surface as ErrNotFound.
type AccountStore interface {
	GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, error)
	InsertAccount(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (domain.Account, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error)
}

// TransactionStore is the insert/read surface for transaction rows.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, accountID uuid.UUID, typ domain.TransactionType, amount decimal.Decimal, ts time.Time) (domain.Transaction, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Transaction, error)
}

// Store is the injected persistence dependency of the processor.
//
// Atomically runs fn against a scope-bound view of the store: every call fn
// makes through that view belongs to one atomic unit which commits only if
// fn returns nil and rolls back otherwise. Within the scope, a GetAccount
// additionally serializes concurrent scopes touching the same account, so
// the read-check-write sequence of two racing calls cannot interleave.
type Store interface {
	AccountStore
	TransactionStore
	Atomically(ctx context.Context, fn func(Store) error) error
}
