package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	shopadmin "github.com/miaodi2002/shopadmin"
)

const pgUniqueViolation = "23505"

// AccountStore persists marketplace account listings.
type AccountStore struct {
	pool *pgxpool.Pool
}

func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

func (s *AccountStore) InsertAccount(ctx context.Context, account shopadmin.AccountRecord) error {
	const query = `INSERT INTO accounts (account_id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.pool.Exec(ctx, query,
		account.AccountID,
		account.Name,
		int16(account.Status),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return shopadmin.ErrAccountExists
		}
		return fmt.Errorf("%w: insert account: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	return nil
}

func (s *AccountStore) GetAccount(ctx context.Context, accountID string) (shopadmin.AccountRecord, error) {
	const query = `SELECT account_id, name, status, created_at, updated_at
		FROM accounts WHERE account_id = $1`

	var (
		account shopadmin.AccountRecord
		status  int16
	)
	err := s.pool.QueryRow(ctx, query, accountID).Scan(
		&account.AccountID,
		&account.Name,
		&status,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shopadmin.AccountRecord{}, shopadmin.ErrAccountNotFound
		}
		return shopadmin.AccountRecord{}, fmt.Errorf("%w: get account: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	account.Status = shopadmin.AccountStatus(status)
	return account, nil
}

func (s *AccountStore) UpdateAccountStatus(ctx context.Context, accountID string, status shopadmin.AccountStatus, updatedAt time.Time) error {
	const query = `UPDATE accounts SET status = $2, updated_at = $3 WHERE account_id = $1`

	tag, err := s.pool.Exec(ctx, query, accountID, int16(status), updatedAt)
	if err != nil {
		return fmt.Errorf("%w: update account status: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return shopadmin.ErrAccountNotFound
	}
	return nil
}

func (s *AccountStore) DeleteAccount(ctx context.Context, accountID string) error {
	const query = `DELETE FROM accounts WHERE account_id = $1`

	tag, err := s.pool.Exec(ctx, query, accountID)
	if err != nil {
		return fmt.Errorf("%w: delete account: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return shopadmin.ErrAccountNotFound
	}
	return nil
}
