// Package ledger implements the transaction-processing engine: validation of
// deposits and withdrawals against business rules, persistence of the
// transaction record, and the balance mutation of the owning account as a
// single atomic unit.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bankledger/internal/domain"
)

// Processor orchestrates account lookup, the invariant check, transaction
// insertion and the balance write. It owns no state beyond its injected
// store; it is safe under parallel invocation.
type Processor struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewProcessor(store Store, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{store: store, log: log, now: time.Now}
}

// Process applies one deposit or withdrawal. Exactly one transaction row is
// created and exactly one account row mutated on success; zero rows are
// touched on any failure path. Not idempotent: re-invoking with the same
// arguments records a second movement.
func (p *Processor) Process(ctx context.Context, accountID uuid.UUID, typ domain.TransactionType, amount decimal.Decimal) (domain.Transaction, error) {
	if !typ.Valid() {
		return domain.Transaction{}, &InvalidTransactionError{Type: string(typ)}
	}
	if !amount.IsPositive() {
		return domain.Transaction{}, &InvalidAmountError{Amount: amount}
	}

	var txn domain.Transaction
	err := p.store.Atomically(ctx, func(s Store) error {
		acc, err := s.GetAccount(ctx, accountID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return &AccountNotFoundError{AccountID: accountID}
			}
			return &StoreError{Op: "get account", Err: err}
		}

		d := Admit(acc.Balance, amount, typ)
		if !d.Admitted {
			return &InsufficientBalanceError{AccountID: accountID, Balance: acc.Balance}
		}

		txn, err = s.InsertTransaction(ctx, accountID, typ, amount, p.now().UTC())
		if err != nil {
			return &StoreError{Op: "insert transaction", Err: err}
		}
		if err := s.UpdateBalance(ctx, accountID, d.NewBalance); err != nil {
			return &StoreError{Op: "update balance", Err: err}
		}
		return nil
	})
	if err != nil {
		return domain.Transaction{}, scopeErr(err)
	}

	p.log.Info("transaction processed",
		zap.String("account_id", accountID.String()),
		zap.String("type", string(typ)),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("tx_id", txn.ID.String()),
	)
	return txn, nil
}

// CreateAccount opens an account with a non-negative opening balance. After
// creation the balance is mutated only by Process.
func (p *Processor) CreateAccount(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (domain.Account, error) {
	if balance.IsNegative() {
		return domain.Account{}, &InvalidAmountError{Amount: balance, Reason: "opening balance must not be negative"}
	}
	acc, err := p.store.InsertAccount(ctx, userID, balance)
	if err != nil {
		return domain.Account{}, &StoreError{Op: "insert account", Err: err}
	}
	p.log.Info("account created",
		zap.String("account_id", acc.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return acc, nil
}

// Account returns one account by id.
func (p *Processor) Account(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	acc, err := p.store.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Account{}, &AccountNotFoundError{AccountID: id}
		}
		return domain.Account{}, &StoreError{Op: "get account", Err: err}
	}
	return acc, nil
}

// Accounts lists accounts with offset/limit pagination.
func (p *Processor) Accounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	accs, err := p.store.ListAccounts(ctx, limit, offset)
	if err != nil {
		return nil, &StoreError{Op: "list accounts", Err: err}
	}
	return accs, nil
}

// AccountTransactions lists the movements of one account with offset/limit
// pagination. An unknown account yields an empty slice, not an error.
func (p *Processor) AccountTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Transaction, error) {
	txns, err := p.store.ListTransactions(ctx, accountID, limit, offset)
	if err != nil {
		return nil, &StoreError{Op: "list transactions", Err: err}
	}
	return txns, nil
}

// scopeErr keeps already-typed failures intact and wraps everything else
// (begin/commit faults from the scope runner) as a store failure.
func scopeErr(err error) error {
	var (
		notFound     *AccountNotFoundError
		insufficient *InsufficientBalanceError
		storeErr     *StoreError
	)
	if errors.As(err, &notFound) || errors.As(err, &insufficient) || errors.As(err, &storeErr) {
		return err
	}
	return &StoreError{Op: "atomic scope", Err: err}
}
