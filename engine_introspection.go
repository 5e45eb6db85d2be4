package shopadmin

import (
	"context"
	"time"

	"github.com/miaodi2002/shopadmin/secretbox"
)

// ActiveSessionCount returns the number of tracked sessions across all
// admins, including expired-but-unswept entries.
func (e *Engine) ActiveSessionCount(ctx context.Context) (int, error) {
	return e.sessionStore.ActiveCount(ctx)
}

// AdminSessionCount returns the number of tracked sessions for one admin.
func (e *Engine) AdminSessionCount(ctx context.Context, adminID string) (int, error) {
	return e.sessionStore.CountForAdmin(ctx, adminID)
}

// AdminSessions lists an admin's sessions with redacted token previews for
// the dashboard. Tokens are never returned whole.
func (e *Engine) AdminSessions(ctx context.Context, adminID string) ([]SessionInfo, error) {
	tokens, err := e.sessionStore.TokensForAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}

	infos := make([]SessionInfo, 0, len(tokens))
	for _, token := range tokens {
		sess, err := e.sessionStore.Get(ctx, token)
		if err != nil {
			// Index entries can outlive their session briefly; skip holes.
			continue
		}
		infos = append(infos, SessionInfo{
			TokenPreview: secretbox.MaskPreview(token),
			AdminID:      sess.AdminID,
			IssuedAt:     time.Unix(sess.IssuedAt, 0),
			ExpiresAt:    time.Unix(sess.ExpiresAt, 0),
		})
	}
	return infos, nil
}

// StoreLatency reports session store availability and round-trip latency
// for health checks.
func (e *Engine) StoreLatency(ctx context.Context) (time.Duration, error) {
	return e.sessionStore.Ping(ctx)
}
