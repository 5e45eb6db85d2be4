package shopadmin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestSessionLifecycle(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	admin := env.seedAdmin(t, "alice", "orange-battery-staple")

	ticket, err := env.engine.CreateSession(ctx, admin.AdminID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if ticket.Token == "" {
		t.Fatal("expected a non-empty token")
	}
	wantExpiry := env.clock.Now().Add(24 * time.Hour).Unix()
	if ticket.ExpiresAt.Unix() != wantExpiry {
		t.Fatalf("expiry = %d, want %d", ticket.ExpiresAt.Unix(), wantExpiry)
	}

	identity, err := env.engine.ValidateSession(ctx, ticket.Token)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if identity.AdminID != admin.AdminID || identity.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestValidateSessionRejectsUnknownToken(t *testing.T) {
	env := newTestEngine(t)

	if _, err := env.engine.ValidateSession(context.Background(), "no-such-token"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
}

func TestValidateSessionRejectsEmptyToken(t *testing.T) {
	env := newTestEngine(t)

	if _, err := env.engine.ValidateSession(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
}

func TestExpiredSessionIsRemovedLazily(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	admin := env.seedAdmin(t, "alice", "orange-battery-staple")

	ticket, err := env.engine.CreateSession(ctx, admin.AdminID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	env.clock.Advance(24*time.Hour + time.Minute)

	if _, err := env.engine.ValidateSession(ctx, ticket.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}

	// The expired record and its indexes are gone after the read.
	count, err := env.engine.AdminSessionCount(ctx, admin.AdminID)
	if err != nil {
		t.Fatalf("AdminSessionCount failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 tracked sessions after lazy removal, got %d", count)
	}
}

func TestRefreshSessionExtendsExpiry(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	admin := env.seedAdmin(t, "alice", "orange-battery-staple")

	ticket, err := env.engine.CreateSession(ctx, admin.AdminID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	env.clock.Advance(23 * time.Hour)

	refreshed, err := env.engine.RefreshSession(ctx, ticket.Token)
	if err != nil {
		t.Fatalf("RefreshSession failed: %v", err)
	}
	if refreshed.Token != ticket.Token {
		t.Fatal("refresh must keep the same token")
	}

	// Past the original expiry but inside the refreshed window.
	env.clock.Advance(2 * time.Hour)
	if _, err := env.engine.ValidateSession(ctx, ticket.Token); err != nil {
		t.Fatalf("refreshed session rejected: %v", err)
	}
}

func TestRefreshSessionRejectsExpiredToken(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	admin := env.seedAdmin(t, "alice", "orange-battery-staple")

	ticket, err := env.engine.CreateSession(ctx, admin.AdminID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	env.clock.Advance(25 * time.Hour)

	if _, err := env.engine.RefreshSession(ctx, ticket.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
}

// A revoke landing between a refresh's read and its write must win: the
// rewrite is rejected and the session stays gone.
func TestRefreshSessionLosesRaceToRevoke(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	admin := env.seedAdmin(t, "alice", "orange-battery-staple")

	ticket, err := env.engine.CreateSession(ctx, admin.AdminID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	sess, err := env.engine.sessionStore.Get(ctx, ticket.Token)
	if err != nil {
		t.Fatalf("session read failed: %v", err)
	}
	if err := env.engine.DestroySession(ctx, ticket.Token); err != nil {
		t.Fatalf("DestroySession failed: %v", err)
	}

	sess.ExpiresAt = env.clock.Now().Add(48 * time.Hour).Unix()
	if err := env.engine.sessionStore.Update(ctx, sess, 48*time.Hour); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil for revoked session, got %v", err)
	}

	if _, err := env.engine.ValidateSession(ctx, ticket.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("revoked session resolved again: %v", err)
	}
	count, err := env.engine.AdminSessionCount(ctx, admin.AdminID)
	if err != nil {
		t.Fatalf("AdminSessionCount failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("session count = %d, want 0", count)
	}
}

func TestDestroySessionIsIdempotent(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	admin := env.seedAdmin(t, "alice", "orange-battery-staple")

	ticket, err := env.engine.CreateSession(ctx, admin.AdminID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := env.engine.DestroySession(ctx, ticket.Token); err != nil {
		t.Fatalf("first destroy failed: %v", err)
	}
	if err := env.engine.DestroySession(ctx, ticket.Token); err != nil {
		t.Fatalf("second destroy failed: %v", err)
	}
	if err := env.engine.DestroySession(ctx, ""); err != nil {
		t.Fatalf("empty-token destroy failed: %v", err)
	}

	if _, err := env.engine.ValidateSession(ctx, ticket.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("destroyed session still valid: %v", err)
	}
}

func TestSessionsAreIsolatedPerAdmin(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	alice := env.seedAdmin(t, "alice", "orange-battery-staple")
	bob := env.seedAdmin(t, "bob", "purple-monkey-dishwasher")

	aliceTicket, err := env.engine.CreateSession(ctx, alice.AdminID)
	if err != nil {
		t.Fatalf("CreateSession for alice failed: %v", err)
	}
	bobTicket, err := env.engine.CreateSession(ctx, bob.AdminID)
	if err != nil {
		t.Fatalf("CreateSession for bob failed: %v", err)
	}

	if err := env.engine.DestroySession(ctx, aliceTicket.Token); err != nil {
		t.Fatalf("destroy failed: %v", err)
	}

	identity, err := env.engine.ValidateSession(ctx, bobTicket.Token)
	if err != nil {
		t.Fatalf("bob's session rejected: %v", err)
	}
	if identity.AdminID != bob.AdminID {
		t.Fatalf("wrong identity: %+v", identity)
	}
}

func TestInactiveAdminSessionIsRevoked(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	admin := env.seedAdmin(t, "alice", "orange-battery-staple")

	ticket, err := env.engine.CreateSession(ctx, admin.AdminID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	admin.Status = AdminSuspended
	env.admins.put(admin)

	if _, err := env.engine.ValidateSession(ctx, ticket.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}

	count, err := env.engine.AdminSessionCount(ctx, admin.AdminID)
	if err != nil {
		t.Fatalf("AdminSessionCount failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected suspended admin's session revoked, %d still tracked", count)
	}
}

func TestCreateSessionRejectsEmptyAdminID(t *testing.T) {
	env := newTestEngine(t)

	if _, err := env.engine.CreateSession(context.Background(), ""); !errors.Is(err, ErrSessionCreationFailed) {
		t.Fatalf("got %v, want ErrSessionCreationFailed", err)
	}
}

func TestSweepExpiredRemovesOnlyExpired(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	alice := env.seedAdmin(t, "alice", "orange-battery-staple")
	bob := env.seedAdmin(t, "bob", "purple-monkey-dishwasher")

	if _, err := env.engine.CreateSession(ctx, alice.AdminID); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := env.engine.CreateSession(ctx, alice.AdminID); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	env.clock.Advance(25 * time.Hour)

	fresh, err := env.engine.CreateSession(ctx, bob.AdminID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	removed, err := env.engine.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}

	if _, err := env.engine.ValidateSession(ctx, fresh.Token); err != nil {
		t.Fatalf("fresh session swept by mistake: %v", err)
	}
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	admin := env.seedAdmin(t, "alice", "orange-battery-staple")

	var tokens []string
	for i := 0; i < 3; i++ {
		ticket, err := env.engine.CreateSession(ctx, admin.AdminID)
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		tokens = append(tokens, ticket.Token)
	}

	removed, err := env.engine.LogoutAll(ctx, admin.AdminID)
	if err != nil {
		t.Fatalf("LogoutAll failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}

	for _, token := range tokens {
		if _, err := env.engine.ValidateSession(ctx, token); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("session survived LogoutAll: %v", err)
		}
	}
}

func TestAdminSessionsRedactTokens(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	admin := env.seedAdmin(t, "alice", "orange-battery-staple")

	ticket, err := env.engine.CreateSession(ctx, admin.AdminID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	infos, err := env.engine.AdminSessions(ctx, admin.AdminID)
	if err != nil {
		t.Fatalf("AdminSessions failed: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("got %d sessions, want 1", len(infos))
	}

	info := infos[0]
	if info.TokenPreview == ticket.Token {
		t.Fatal("listing exposed the full token")
	}
	if len(info.TokenPreview) >= len(ticket.Token) {
		t.Fatalf("preview %q is not a redaction of the token", info.TokenPreview)
	}
	if info.AdminID != admin.AdminID {
		t.Fatalf("wrong owner: %q", info.AdminID)
	}
}

func TestActiveSessionCount(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	alice := env.seedAdmin(t, "alice", "orange-battery-staple")
	bob := env.seedAdmin(t, "bob", "purple-monkey-dishwasher")

	if _, err := env.engine.CreateSession(ctx, alice.AdminID); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := env.engine.CreateSession(ctx, bob.AdminID); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	count, err := env.engine.ActiveSessionCount(ctx)
	if err != nil {
		t.Fatalf("ActiveSessionCount failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}
