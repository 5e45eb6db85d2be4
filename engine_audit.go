package shopadmin

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/miaodi2002/shopadmin/session"
)

// Actions form a closed set so the trail stays machine-queryable. Handlers
// must not invent free-text actions.
const (
	ActionAdminLoginSuccess = "admin_login_success"
	ActionAdminLoginFailed  = "admin_login_failed"
	ActionAdminLogout       = "admin_logout"

	ActionAccountCreated = "account_created"
	ActionAccountUpdated = "account_updated"
	ActionAccountDeleted = "account_deleted"

	ActionCredentialsUpdated = "credentials_updated"
	ActionCredentialsViewed  = "credentials_viewed"
	ActionCredentialsDeleted = "credentials_deleted"
)

// Entity types stamped on audit events.
const (
	EntityAdmin   = "admin"
	EntityAccount = "account"
	EntitySession = "session"
)

// actorUnknown marks pre-authentication events where no admin resolved,
// such as a failed login with an unknown username. Real admin IDs are
// UUIDs, so the placeholder can never collide with one.
const actorUnknown = "unknown"

// AuditErrorCode is the stable machine-readable failure code stamped on
// unsuccessful audit events.
type AuditErrorCode string

const (
	auditErrUnauthenticated    AuditErrorCode = "unauthenticated"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrAdminNotFound      AuditErrorCode = "admin_not_found"
	auditErrAccountNotFound    AuditErrorCode = "account_not_found"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrCredentialsMissing AuditErrorCode = "credentials_not_found"
	auditErrCredentialsFailed  AuditErrorCode = "credentials_unavailable"
	auditErrSessionCreation    AuditErrorCode = "session_creation_failed"
	auditErrBackendUnavailable AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

// recordAudit assembles and enqueues one event. It never fails the caller:
// the dispatcher either buffers the event or counts it as dropped.
func (e *Engine) recordAudit(
	ctx context.Context,
	action string,
	actorID string,
	entityType string,
	entityID string,
	success bool,
	opErr error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}
	if actorID == "" {
		actorID = actorIDFromContext(ctx)
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	eventID := uuid.NewString()
	event := AuditEvent{
		EventID:    eventID,
		Timestamp:  e.now().UTC(),
		Action:     action,
		ActorID:    actorID,
		EntityType: entityType,
		EntityID:   entityID,
		IP:         clientIPFromContext(ctx),
		Success:    success,
		Metadata:   metadata,
	}
	if code := auditErrorCode(opErr); code != "" {
		event.Error = string(code)
	}

	e.metricInc(MetricAuditEmitted)
	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return auditErrUnauthenticated
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLoginRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrAdminNotFound):
		return auditErrAdminNotFound
	case errors.Is(err, ErrAccountNotFound):
		return auditErrAccountNotFound
	case errors.Is(err, ErrAccountExists):
		return auditErrDuplicate
	case errors.Is(err, ErrCredentialsNotFound):
		return auditErrCredentialsMissing
	case errors.Is(err, ErrCredentialsUnavailable):
		return auditErrCredentialsFailed
	case errors.Is(err, ErrSessionCreationFailed),
		errors.Is(err, session.ErrTokenExists):
		return auditErrSessionCreation
	case errors.Is(err, ErrRepositoryUnavailable),
		errors.Is(err, session.ErrStoreUnavailable):
		return auditErrBackendUnavailable
	default:
		return auditErrInternal
	}
}
