package middleware

import (
	"context"
	"net/http"

	shopadmin "github.com/miaodi2002/shopadmin"
)

// SessionCookieName is the cookie carrying the opaque session token. The
// engine never sets cookie flags itself; production deployments must mark
// it HttpOnly and Secure at the transport layer.
const SessionCookieName = "admin_session"

// IdentityFromContext returns the admin identity stamped by [Guard].
func IdentityFromContext(ctx context.Context) (shopadmin.Identity, bool) {
	return shopadmin.ActorFromContext(ctx)
}

// Guard authenticates every request before it reaches the handler. The
// session is resolved exactly once; downstream handlers and the audit
// recorder read the identity from the context instead of re-validating.
// All failures produce the same generic 401.
func Guard(engine *shopadmin.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				unauthenticated(w)
				return
			}

			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthenticated(w)
				return
			}

			ctx := shopadmin.WithClientIP(r.Context(), r.RemoteAddr)

			identity, err := engine.ValidateSession(ctx, cookie.Value)
			if err != nil {
				unauthenticated(w)
				return
			}

			ctx = shopadmin.WithActor(ctx, *identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthenticated(w http.ResponseWriter) {
	http.Error(w, "authentication required", http.StatusUnauthorized)
}
