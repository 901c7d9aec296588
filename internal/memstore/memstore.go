// Package memstore is an in-memory implementation of the store adapters.
// It backs unit tests and the no-database dev mode. One mutex serializes
// every atomic scope, and scopes run against staged state that is published
// only on success, so a failed scope leaves nothing behind.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bankledger/internal/auth"
	"bankledger/internal/domain"
	"bankledger/internal/ledger"
)

type state struct {
	accounts map[uuid.UUID]domain.Account
	txns     []domain.Transaction
}

func (st *state) clone() *state {
	accs := make(map[uuid.UUID]domain.Account, len(st.accounts))
	for id, a := range st.accounts {
		accs[id] = a
	}
	txns := make([]domain.Transaction, len(st.txns))
	copy(txns, st.txns)
	return &state{accounts: accs, txns: txns}
}

// Store implements ledger.Store and auth.UserStore.
type Store struct {
	mu    sync.Mutex
	st    *state
	users map[uuid.UUID]domain.User
	email map[string]uuid.UUID
}

func New() *Store {
	return &Store{
		st:    &state{accounts: make(map[uuid.UUID]domain.Account)},
		users: make(map[uuid.UUID]domain.User),
		email: make(map[string]uuid.UUID),
	}
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getAccount(id)
}

func (s *Store) InsertAccount(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.insertAccount(userID, balance)
}

func (s *Store) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.updateBalance(id, balance)
}

func (s *Store) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listAccounts(limit, offset)
}

func (s *Store) InsertTransaction(ctx context.Context, accountID uuid.UUID, typ domain.TransactionType, amount decimal.Decimal, ts time.Time) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.insertTransaction(accountID, typ, amount, ts)
}

func (s *Store) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listTransactions(accountID, limit, offset)
}

// Atomically serializes the whole scope behind the store mutex and runs fn
// against a staged copy. The copy becomes the visible state only when fn
// returns nil; any error discards it, so partially applied scopes cannot be
// observed.
func (s *Store) Atomically(ctx context.Context, fn func(ledger.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.st.clone()
	if err := fn(&scopeView{st: staged}); err != nil {
		return err
	}
	s.st = staged
	return nil
}

// scopeView is the scope-bound store handed to Atomically callbacks. The
// outer mutex is already held; nested Atomically calls join the open scope.
type scopeView struct {
	st *state
}

func (v *scopeView) GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return v.st.getAccount(id)
}

func (v *scopeView) InsertAccount(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (domain.Account, error) {
	return v.st.insertAccount(userID, balance)
}

func (v *scopeView) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return v.st.updateBalance(id, balance)
}

func (v *scopeView) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	return v.st.listAccounts(limit, offset)
}

func (v *scopeView) InsertTransaction(ctx context.Context, accountID uuid.UUID, typ domain.TransactionType, amount decimal.Decimal, ts time.Time) (domain.Transaction, error) {
	return v.st.insertTransaction(accountID, typ, amount, ts)
}

func (v *scopeView) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Transaction, error) {
	return v.st.listTransactions(accountID, limit, offset)
}

func (v *scopeView) Atomically(ctx context.Context, fn func(ledger.Store) error) error {
	return fn(v)
}

func (st *state) getAccount(id uuid.UUID) (domain.Account, error) {
	a, ok := st.accounts[id]
	if !ok {
		return domain.Account{}, ledger.ErrNotFound
	}
	return a, nil
}

func (st *state) insertAccount(userID uuid.UUID, balance decimal.Decimal) (domain.Account, error) {
	a := domain.Account{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   balance,
		CreatedAt: time.Now().UTC(),
	}
	st.accounts[a.ID] = a
	return a, nil
}

func (st *state) updateBalance(id uuid.UUID, balance decimal.Decimal) error {
	a, ok := st.accounts[id]
	if !ok {
		return ledger.ErrNotFound
	}
	a.Balance = balance
	st.accounts[id] = a
	return nil
}

func (st *state) listAccounts(limit, offset int) ([]domain.Account, error) {
	all := make([]domain.Account, 0, len(st.accounts))
	for _, a := range st.accounts {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})
	return page(all, limit, offset), nil
}

func (st *state) insertTransaction(accountID uuid.UUID, typ domain.TransactionType, amount decimal.Decimal, ts time.Time) (domain.Transaction, error) {
	// Referential integrity check, same contract as the SQL foreign key.
	if _, ok := st.accounts[accountID]; !ok {
		return domain.Transaction{}, ledger.ErrNotFound
	}
	txn := domain.Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Type:      typ,
		Amount:    amount,
		Timestamp: ts,
	}
	st.txns = append(st.txns, txn)
	return txn, nil
}

func (st *state) listTransactions(accountID uuid.UUID, limit, offset int) ([]domain.Transaction, error) {
	var matched []domain.Transaction
	// Newest first, matching the SQL adapter's ordering.
	for i := len(st.txns) - 1; i >= 0; i-- {
		if st.txns[i].AccountID == accountID {
			matched = append(matched, st.txns[i])
		}
	}
	return page(matched, limit, offset), nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]T, end-offset)
	copy(out, all[offset:end])
	return out
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash, fullName string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := s.email[key]; ok {
		return domain.User{}, auth.ErrEmailTaken
	}
	u := domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	s.email[key] = u.ID
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.email[strings.ToLower(email)]
	if !ok {
		return domain.User{}, auth.ErrUserNotFound
	}
	return s.users[id], nil
}
