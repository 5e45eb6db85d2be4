package shopadmin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/miaodi2002/shopadmin/internal"
	"github.com/miaodi2002/shopadmin/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// createSessionRetries bounds the token-collision retry loop. The token has
// 256 bits of entropy, so a second collision in a row indicates something
// worse than bad luck.
const createSessionRetries = 3

// CreateSession issues a fresh session for adminID and persists it. The
// returned ticket carries the opaque token and absolute expiry for the
// transport layer to arm as a cookie.
func (e *Engine) CreateSession(ctx context.Context, adminID string) (*SessionTicket, error) {
	if adminID == "" {
		return nil, fmt.Errorf("%w: empty admin id", ErrSessionCreationFailed)
	}

	now := e.now()
	ttl := e.sessionTTL()

	for attempt := 0; attempt < createSessionRetries; attempt++ {
		token, err := internal.NewSessionToken()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSessionCreationFailed, err)
		}

		sess := &session.Session{
			Token:     token,
			AdminID:   adminID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		}

		err = e.sessionStore.Insert(ctx, sess, ttl)
		if err == nil {
			e.metricInc(MetricSessionCreated)
			return &SessionTicket{
				Token:     token,
				ExpiresAt: time.Unix(sess.ExpiresAt, 0),
			}, nil
		}
		if errors.Is(err, session.ErrTokenExists) {
			e.logger.Warn("session token collision, retrying",
				zap.String("admin_id", adminID),
			)
			continue
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionCreationFailed, err)
	}

	return nil, fmt.Errorf("%w: token space exhausted", ErrSessionCreationFailed)
}

// ValidateSession resolves a token to its owning admin. Every failure is
// reported as [ErrUnauthenticated] with no further distinction; the
// internal cause is logged for operators. Expired records found on the read
// path are deleted lazily.
func (e *Engine) ValidateSession(ctx context.Context, token string) (*Identity, error) {
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricValidateLatency, time.Since(start)) }()
	}

	identity, _, err := e.resolveSession(ctx, token)
	if err != nil {
		e.metricInc(MetricSessionRejected)
		return nil, ErrUnauthenticated
	}

	e.metricInc(MetricSessionValidated)
	return identity, nil
}

// RefreshSession extends a valid session's expiry to now + TTL, keeping the
// same token. Invalid sessions fail exactly like ValidateSession.
func (e *Engine) RefreshSession(ctx context.Context, token string) (*SessionTicket, error) {
	identity, sess, err := e.resolveSession(ctx, token)
	if err != nil {
		e.metricInc(MetricSessionRejected)
		return nil, ErrUnauthenticated
	}

	now := e.now()
	ttl := e.sessionTTL()
	sess.ExpiresAt = now.Add(ttl).Unix()

	if err := e.sessionStore.Update(ctx, sess, ttl); err != nil {
		if errors.Is(err, redis.Nil) {
			// Revoked between the read and the write. The revoke wins.
			e.logger.Info("session revoked during refresh",
				zap.String("admin_id", identity.AdminID),
			)
		} else {
			e.logger.Warn("session refresh write failed",
				zap.String("admin_id", identity.AdminID),
				zap.Error(err),
			)
		}
		e.metricInc(MetricSessionRejected)
		return nil, ErrUnauthenticated
	}

	e.metricInc(MetricSessionRefreshed)
	return &SessionTicket{
		Token:     token,
		ExpiresAt: time.Unix(sess.ExpiresAt, 0),
	}, nil
}

// DestroySession hard-deletes a session. Destroying a token that no longer
// exists is a no-op, so the call is idempotent.
func (e *Engine) DestroySession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := e.sessionStore.Delete(ctx, token); err != nil {
		return err
	}
	e.metricInc(MetricSessionDestroyed)
	return nil
}

// SweepExpired batch-deletes every session whose expiry has passed.
// Intended to run periodically from the background sweeper, not per
// request.
func (e *Engine) SweepExpired(ctx context.Context) (int, error) {
	removed, err := e.sessionStore.DeleteExpired(ctx, e.now().Unix())
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		if e.metrics != nil {
			e.metrics.Add(MetricSessionsSwept, uint64(removed))
		}
		e.logger.Info("expired sessions swept", zap.Int("removed", removed))
	}
	return removed, nil
}

// resolveSession is the shared validation path. It returns an internal
// error describing the cause; callers collapse it to ErrUnauthenticated
// before it leaves the engine.
func (e *Engine) resolveSession(ctx context.Context, token string) (*Identity, *session.Session, error) {
	if token == "" {
		return nil, nil, errors.New("empty token")
	}

	sess, err := e.sessionStore.Get(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			// Unknown token. Common and uninteresting.
		case errors.Is(err, session.ErrSessionCorrupt):
			e.logger.Error("corrupt session blob, deleting", zap.Error(err))
			_ = e.sessionStore.Delete(ctx, token)
		default:
			e.logger.Warn("session store read failed", zap.Error(err))
		}
		return nil, nil, err
	}

	if e.now().Unix() >= sess.ExpiresAt {
		// Lazy sweep: housekeeping only, the expiry check above is the gate.
		_ = e.sessionStore.Delete(ctx, token)
		e.logger.Debug("expired session removed on read",
			zap.String("admin_id", sess.AdminID),
		)
		return nil, nil, errors.New("session expired")
	}

	admin, err := e.adminProvider.GetAdminByID(ctx, sess.AdminID)
	if err != nil {
		e.logger.Warn("session owner lookup failed",
			zap.String("admin_id", sess.AdminID),
			zap.Error(err),
		)
		return nil, nil, err
	}
	if admin.Status != AdminActive {
		_ = e.sessionStore.Delete(ctx, token)
		e.logger.Info("session for inactive admin revoked",
			zap.String("admin_id", sess.AdminID),
		)
		return nil, nil, errors.New("admin inactive")
	}

	return &Identity{AdminID: admin.AdminID, Username: admin.Username}, sess, nil
}
