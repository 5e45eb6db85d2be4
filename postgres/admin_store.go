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

// AdminStore reads administrator records for the engine and offers the
// write operations a provisioning tool needs.
type AdminStore struct {
	pool *pgxpool.Pool
}

func NewAdminStore(pool *pgxpool.Pool) *AdminStore {
	return &AdminStore{pool: pool}
}

func (s *AdminStore) GetAdminByUsername(ctx context.Context, username string) (shopadmin.AdminRecord, error) {
	const query = `SELECT admin_id, username, password_hash, status
		FROM admins WHERE username = $1`
	return s.scanAdmin(s.pool.QueryRow(ctx, query, username))
}

func (s *AdminStore) GetAdminByID(ctx context.Context, adminID string) (shopadmin.AdminRecord, error) {
	const query = `SELECT admin_id, username, password_hash, status
		FROM admins WHERE admin_id = $1`
	return s.scanAdmin(s.pool.QueryRow(ctx, query, adminID))
}

func (s *AdminStore) scanAdmin(row pgx.Row) (shopadmin.AdminRecord, error) {
	var (
		admin  shopadmin.AdminRecord
		status int16
	)
	err := row.Scan(&admin.AdminID, &admin.Username, &admin.PasswordHash, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shopadmin.AdminRecord{}, shopadmin.ErrAdminNotFound
		}
		return shopadmin.AdminRecord{}, fmt.Errorf("%w: get admin: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	admin.Status = shopadmin.AdminStatus(status)
	return admin, nil
}

// InsertAdmin provisions a new administrator. The password hash must
// already be in PHC form.
func (s *AdminStore) InsertAdmin(ctx context.Context, admin shopadmin.AdminRecord) error {
	const query = `INSERT INTO admins (admin_id, username, password_hash, status)
		VALUES ($1, $2, $3, $4)`

	_, err := s.pool.Exec(ctx, query, admin.AdminID, admin.Username, admin.PasswordHash, int16(admin.Status))
	if err != nil {
		return fmt.Errorf("%w: insert admin: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	return nil
}

// SetAdminStatus moves an administrator to a new lifecycle state. Pair it
// with Engine.LogoutAll when suspending.
func (s *AdminStore) SetAdminStatus(ctx context.Context, adminID string, status shopadmin.AdminStatus, updatedAt time.Time) error {
	const query = `UPDATE admins SET status = $2, updated_at = $3 WHERE admin_id = $1`

	tag, err := s.pool.Exec(ctx, query, adminID, int16(status), updatedAt)
	if err != nil {
		return fmt.Errorf("%w: set admin status: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return shopadmin.ErrAdminNotFound
	}
	return nil
}
