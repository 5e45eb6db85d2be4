package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	shopadmin "github.com/miaodi2002/shopadmin"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		admin_id      TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		status        SMALLINT NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		account_id TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		status     SMALLINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS account_credentials (
		account_id TEXT PRIMARY KEY,
		blob       BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		event_id    TEXT PRIMARY KEY,
		occurred_at TIMESTAMPTZ NOT NULL,
		action      TEXT NOT NULL,
		actor_id    TEXT NOT NULL DEFAULT '',
		entity_type TEXT NOT NULL DEFAULT '',
		entity_id   TEXT NOT NULL DEFAULT '',
		ip          TEXT NOT NULL DEFAULT '',
		success     BOOLEAN NOT NULL,
		error_code  TEXT NOT NULL DEFAULT '',
		metadata    JSONB
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_occurred_at ON audit_events (occurred_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_actor ON audit_events (actor_id, occurred_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_entity ON audit_events (entity_type, entity_id, occurred_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_action ON audit_events (action, occurred_at DESC)`,
}

// EnsureSchema creates the tables and indexes this package needs. Every
// statement is idempotent, so repeated startup runs are safe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: ensure schema: %v", shopadmin.ErrRepositoryUnavailable, err)
		}
	}
	return nil
}
