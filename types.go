package shopadmin

import (
	"context"
	"time"
)

// AdminStatus is the lifecycle state of an administrator account. Only
// active admins can hold valid sessions.
type AdminStatus uint8

const (
	AdminActive AdminStatus = iota
	AdminSuspended
	AdminDeleted
)

// AdminRecord is the engine's view of one administrator. PasswordHash is a
// PHC-format argon2id string.
type AdminRecord struct {
	AdminID      string
	Username     string
	PasswordHash string
	Status       AdminStatus
}

// AdminProvider is the application-supplied source of administrator records.
type AdminProvider interface {
	GetAdminByUsername(ctx context.Context, username string) (AdminRecord, error)
	GetAdminByID(ctx context.Context, adminID string) (AdminRecord, error)
}

// AccountStatus is the marketplace state of a listed account.
type AccountStatus uint8

const (
	AccountAvailable AccountStatus = iota
	AccountReserved
	AccountSold
	AccountDisabled
)

// AccountRecord is one marketplace account listing. Credentials are stored
// separately as ciphertext and are never part of this record.
type AccountRecord struct {
	AccountID string
	Name      string
	Status    AccountStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountStore persists marketplace accounts.
type AccountStore interface {
	InsertAccount(ctx context.Context, account AccountRecord) error
	GetAccount(ctx context.Context, accountID string) (AccountRecord, error)
	UpdateAccountStatus(ctx context.Context, accountID string, status AccountStatus, updatedAt time.Time) error
	DeleteAccount(ctx context.Context, accountID string) error
}

// CredentialStore persists encrypted credential blobs keyed by account.
// The blob is an opaque serialized ciphertext; the store never sees
// plaintext.
type CredentialStore interface {
	UpsertCredentials(ctx context.Context, accountID string, blob []byte, updatedAt time.Time) error
	GetCredentials(ctx context.Context, accountID string) ([]byte, error)
	DeleteCredentials(ctx context.Context, accountID string) error
}

// AuditFilter narrows an audit query. Zero-value fields are ignored.
type AuditFilter struct {
	ActorID    string
	EntityType string
	EntityID   string
	Action     string
	From       time.Time
	To         time.Time
	Limit      int
}

// ActivityBucket is one time slice of an activity histogram.
type ActivityBucket struct {
	Start time.Time
	Count int64
}

// AuditStore is the append-only event log. Implementations must not expose
// update or delete operations for existing events.
type AuditStore interface {
	AppendEvent(ctx context.Context, event AuditEvent) error
	QueryEvents(ctx context.Context, filter AuditFilter) ([]AuditEvent, error)
	CountByAction(ctx context.Context, from, to time.Time) (map[string]int64, error)
	CountByActor(ctx context.Context, from, to time.Time) (map[string]int64, error)
	ActivityBuckets(ctx context.Context, from, to time.Time, bucket time.Duration) ([]ActivityBucket, error)
}

// Identity is the resolved owner of a validated session.
type Identity struct {
	AdminID  string
	Username string
}

// SessionTicket is what the transport layer needs to arm a session cookie:
// the opaque token and its absolute expiry.
type SessionTicket struct {
	Token     string
	ExpiresAt time.Time
}

// LoginResult carries the outcome of a successful login.
type LoginResult struct {
	Admin  Identity
	Ticket SessionTicket
}

// SessionInfo is a redacted session listing for dashboards. TokenPreview
// never contains the full token.
type SessionInfo struct {
	TokenPreview string
	AdminID      string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// LoginThrottle gates login attempts. The module ships no implementation;
// NoOpThrottle is the default.
type LoginThrottle interface {
	Check(ctx context.Context, username, ip string) error
	RecordFailure(ctx context.Context, username, ip string) error
	Reset(ctx context.Context, username, ip string) error
}

// NoOpThrottle allows every attempt.
type NoOpThrottle struct{}

func (NoOpThrottle) Check(context.Context, string, string) error         { return nil }
func (NoOpThrottle) RecordFailure(context.Context, string, string) error { return nil }
func (NoOpThrottle) Reset(context.Context, string, string) error         { return nil }
