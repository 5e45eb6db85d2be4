package shopadmin

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Login verifies an admin's password and issues a session. Every failure
// path returns [ErrInvalidCredentials] (or [ErrLoginRateLimited]) and
// records an admin_login_failed event; when the username resolves to no
// admin the event's actor is the "unknown" placeholder.
func (e *Engine) Login(ctx context.Context, username, pass string) (*LoginResult, error) {
	ip := clientIPFromContext(ctx)

	if err := e.throttle.Check(ctx, username, ip); err != nil {
		e.metricInc(MetricLoginFailure)
		e.recordAudit(ctx, ActionAdminLoginFailed, actorUnknown, EntityAdmin, "", false, ErrLoginRateLimited, func() map[string]string {
			return map[string]string{
				"username": username,
				"reason":   "rate_limited",
			}
		})
		return nil, ErrLoginRateLimited
	}

	if username == "" || pass == "" {
		e.loginFailed(ctx, username, ip, actorUnknown, "empty_input")
		return nil, ErrInvalidCredentials
	}

	admin, err := e.adminProvider.GetAdminByUsername(ctx, username)
	if err != nil {
		e.loginFailed(ctx, username, ip, actorUnknown, "username_unknown")
		return nil, ErrInvalidCredentials
	}

	ok, err := e.passwordHash.Verify(pass, admin.PasswordHash)
	if err != nil || !ok {
		e.loginFailed(ctx, username, ip, admin.AdminID, "password_mismatch")
		return nil, ErrInvalidCredentials
	}
	pass = ""

	if admin.Status != AdminActive {
		e.loginFailed(ctx, username, ip, admin.AdminID, "admin_inactive")
		return nil, ErrInvalidCredentials
	}

	ticket, err := e.CreateSession(ctx, admin.AdminID)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.recordAudit(ctx, ActionAdminLoginFailed, admin.AdminID, EntityAdmin, admin.AdminID, false, err, func() map[string]string {
			return map[string]string{
				"username": username,
				"reason":   "session_create_failed",
			}
		})
		return nil, err
	}

	if err := e.throttle.Reset(ctx, username, ip); err != nil {
		e.logger.Warn("login throttle reset failed")
	}

	e.metricInc(MetricLoginSuccess)
	e.recordAudit(ctx, ActionAdminLoginSuccess, admin.AdminID, EntityAdmin, admin.AdminID, true, nil, func() map[string]string {
		return map[string]string{
			"username": username,
		}
	})

	return &LoginResult{
		Admin:  Identity{AdminID: admin.AdminID, Username: admin.Username},
		Ticket: *ticket,
	}, nil
}

func (e *Engine) loginFailed(ctx context.Context, username, ip, actorID, reason string) {
	if err := e.throttle.RecordFailure(ctx, username, ip); err != nil {
		e.logger.Warn("login throttle record failed")
	}
	e.metricInc(MetricLoginFailure)
	e.recordAudit(ctx, ActionAdminLoginFailed, actorID, EntityAdmin, "", false, ErrInvalidCredentials, func() map[string]string {
		return map[string]string{
			"username": username,
			"reason":   reason,
		}
	})
}

// Logout destroys the session behind token and records admin_logout. It is
// idempotent like DestroySession; a token that resolves to no session is
// already logged out, so the repeat leaves no audit event. The audit actor
// comes from the session when it resolves, the context otherwise.
func (e *Engine) Logout(ctx context.Context, token string) error {
	actorID := ""
	if sess, err := e.sessionStore.Get(ctx, token); err == nil {
		actorID = sess.AdminID
	} else if errors.Is(err, redis.Nil) {
		return nil
	} else {
		e.logger.Warn("logout session lookup failed")
		actorID = actorIDFromContext(ctx)
	}

	err := e.DestroySession(ctx, token)
	if err == nil {
		e.metricInc(MetricLogout)
	}
	e.recordAudit(ctx, ActionAdminLogout, actorID, EntitySession, "", err == nil, err, nil)
	return err
}

// LogoutAll revokes every session owned by adminID, for example when the
// admin is deactivated.
func (e *Engine) LogoutAll(ctx context.Context, adminID string) (int, error) {
	removed, err := e.sessionStore.DeleteAllForAdmin(ctx, adminID)
	if err == nil && removed > 0 {
		if e.metrics != nil {
			e.metrics.Add(MetricSessionDestroyed, uint64(removed))
		}
	}
	e.recordAudit(ctx, ActionAdminLogout, adminID, EntityAdmin, adminID, err == nil, err, func() map[string]string {
		return map[string]string{
			"scope": "all_sessions",
		}
	})
	return removed, err
}
