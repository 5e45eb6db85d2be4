package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	shopadmin "github.com/miaodi2002/shopadmin"
)

// CredentialStore persists sealed credential blobs, one per account. The
// blob column is opaque to SQL; only the engine holds the key.
type CredentialStore struct {
	pool *pgxpool.Pool
}

func NewCredentialStore(pool *pgxpool.Pool) *CredentialStore {
	return &CredentialStore{pool: pool}
}

func (s *CredentialStore) UpsertCredentials(ctx context.Context, accountID string, blob []byte, updatedAt time.Time) error {
	const query = `INSERT INTO account_credentials (account_id, blob, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE SET blob = EXCLUDED.blob, updated_at = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, query, accountID, blob, updatedAt)
	if err != nil {
		return fmt.Errorf("%w: upsert credentials: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	return nil
}

func (s *CredentialStore) GetCredentials(ctx context.Context, accountID string) ([]byte, error) {
	const query = `SELECT blob FROM account_credentials WHERE account_id = $1`

	var blob []byte
	err := s.pool.QueryRow(ctx, query, accountID).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shopadmin.ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("%w: get credentials: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	return blob, nil
}

func (s *CredentialStore) DeleteCredentials(ctx context.Context, accountID string) error {
	const query = `DELETE FROM account_credentials WHERE account_id = $1`

	tag, err := s.pool.Exec(ctx, query, accountID)
	if err != nil {
		return fmt.Errorf("%w: delete credentials: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return shopadmin.ErrCredentialsNotFound
	}
	return nil
}
