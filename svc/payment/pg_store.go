package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/socialkit/pkg/pg"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgAccountStore keeps payment accounts in the payment_accounts table.
type PgAccountStore struct {
	db  DBTX
	now func() time.Time
}

// NewPgAccountStore works over a pool, a connection or a transaction.
func NewPgAccountStore(db DBTX) *PgAccountStore {
	return &PgAccountStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const (
	accountColumns = `user_id, type, account_id, account, created_at, updated_at`

	upsertAccountQuery = `
INSERT INTO payment_accounts (user_id, type, account_id, account, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (user_id, type) DO UPDATE
SET account_id = EXCLUDED.account_id,
    account    = EXCLUDED.account,
    updated_at = EXCLUDED.updated_at
RETURNING created_at, updated_at`

	getAccountQuery          = `SELECT ` + accountColumns + ` FROM payment_accounts WHERE user_id = $1 AND type = $2`
	getAccountByAccountQuery = `SELECT ` + accountColumns + ` FROM payment_accounts WHERE account_id = $1`
	deleteAccountQuery       = `DELETE FROM payment_accounts WHERE user_id = $1 AND type = $2 RETURNING ` + accountColumns
)

func (s *PgAccountStore) Save(ctx context.Context, acc *PaymentAccount) error {
	if !acc.Type.Valid() {
		return ErrInvalidAccountType
	}
	account := acc.Account
	if len(account) == 0 {
		account = json.RawMessage(`{}`)
	}
	err := s.db.QueryRow(ctx, upsertAccountQuery,
		acc.UserID, string(acc.Type), acc.AccountID, []byte(account), s.now(),
	).Scan(&acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrAccountIDConflict.Wrap(err)
		}
		return fmt.Errorf("save payment account: %w", err)
	}
	acc.Account = account
	return nil
}

func (s *PgAccountStore) Get(ctx context.Context, userID string, typ AccountType) (*PaymentAccount, error) {
	return s.scanOne(s.db.QueryRow(ctx, getAccountQuery, userID, string(typ)), "get payment account")
}

func (s *PgAccountStore) GetByAccountID(ctx context.Context, accountID string) (*PaymentAccount, error) {
	return s.scanOne(s.db.QueryRow(ctx, getAccountByAccountQuery, accountID), "get payment account by id")
}

func (s *PgAccountStore) Delete(ctx context.Context, userID string, typ AccountType) (*PaymentAccount, error) {
	return s.scanOne(s.db.QueryRow(ctx, deleteAccountQuery, userID, string(typ)), "delete payment account")
}

func (s *PgAccountStore) scanOne(row pgx.Row, op string) (*PaymentAccount, error) {
	var (
		acc     PaymentAccount
		typ     string
		account []byte
	)
	if err := row.Scan(&acc.UserID, &typ, &acc.AccountID, &account, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	acc.Type = AccountType(typ)
	acc.Account = json.RawMessage(account)
	return &acc, nil
}
