package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"bankledger/internal/auth"
	"bankledger/internal/domain"
	"bankledger/internal/ledger"
)

const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same SQL
// methods serve standalone reads and scope-bound access.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements ledger.Store and auth.UserStore on PostgreSQL.
type Store struct {
	sqlStore
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{sqlStore: sqlStore{db: pool}, pool: pool}
}

// Atomically runs fn inside one database transaction. The scope-bound view
// it hands to fn reads accounts with FOR UPDATE, so concurrent scopes on the
// same account queue behind the row lock until commit or rollback.
func (s *Store) Atomically(ctx context.Context, fn func(ledger.Store) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&txStore{sqlStore{db: tx, lockAccounts: true}}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// txStore joins nested Atomically calls to the already open scope.
type txStore struct {
	sqlStore
}

func (t *txStore) Atomically(ctx context.Context, fn func(ledger.Store) error) error {
	return fn(t)
}

type sqlStore struct {
	db           querier
	lockAccounts bool
}

func (s sqlStore) GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	q := `SELECT id, user_id, balance::text, created_at FROM accounts WHERE id = $1`
	if s.lockAccounts {
		q += ` FOR UPDATE`
	}
	acc, err := scanAccount(s.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, ledger.ErrNotFound
	}
	return acc, err
}

func (s sqlStore) InsertAccount(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (domain.Account, error) {
	return scanAccount(s.db.QueryRow(ctx,
		`INSERT INTO accounts (id, user_id, balance)
		 VALUES ($1, $2, $3::numeric)
		 RETURNING id, user_id, balance::text, created_at`,
		uuid.New(), userID, balance.StringFixed(2),
	))
}

func (s sqlStore) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE accounts SET balance = $2::numeric WHERE id = $1`,
		id, balance.StringFixed(2),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (s sqlStore) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, balance::text, created_at
		   FROM accounts
		  ORDER BY created_at, id
		  LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accs := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accs = append(accs, acc)
	}
	return accs, rows.Err()
}

func (s sqlStore) InsertTransaction(ctx context.Context, accountID uuid.UUID, typ domain.TransactionType, amount decimal.Decimal, ts time.Time) (domain.Transaction, error) {
	return scanTransaction(s.db.QueryRow(ctx,
		`INSERT INTO transactions (id, account_id, tx_type, amount, ts)
		 VALUES ($1, $2, $3, $4::numeric, $5)
		 RETURNING id, account_id, tx_type, amount::text, ts`,
		uuid.New(), accountID, string(typ), amount.StringFixed(2), ts,
	))
}

func (s sqlStore) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Transaction, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, account_id, tx_type, amount::text, ts
		   FROM transactions
		  WHERE account_id = $1
		  ORDER BY ts DESC, id DESC
		  LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

func (s sqlStore) CreateUser(ctx context.Context, email, passwordHash, fullName string) (domain.User, error) {
	var u domain.User
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash, full_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, email, password_hash, full_name, created_at`,
		uuid.New(), email, passwordHash, fullName,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.User{}, auth.ErrEmailTaken
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s sqlStore) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := s.db.QueryRow(ctx,
		`SELECT id, email, password_hash, full_name, created_at
		   FROM users
		  WHERE lower(email) = lower($1)`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		acc domain.Account
		bal string
	)
	if err := row.Scan(&acc.ID, &acc.UserID, &bal, &acc.CreatedAt); err != nil {
		return domain.Account{}, err
	}
	b, err := decimal.NewFromString(bal)
	if err != nil {
		return domain.Account{}, err
	}
	acc.Balance = b
	return acc, nil
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var (
		txn domain.Transaction
		typ string
		amt string
	)
	if err := row.Scan(&txn.ID, &txn.AccountID, &typ, &amt, &txn.Timestamp); err != nil {
		return domain.Transaction{}, err
	}
	a, err := decimal.NewFromString(amt)
	if err != nil {
		return domain.Transaction{}, err
	}
	txn.Type = domain.TransactionType(typ)
	txn.Amount = a
	return txn, nil
}
