package shopadmin

import "context"

type clientIPContextKey struct{}
type actorContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The engine stamps
// it on audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithActor attaches the authenticated admin identity to ctx. The audit
// recorder reads it to fill actorId; the Auth Gate sets it after resolving
// the session cookie.
func WithActor(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, actorContextKey{}, identity)
}

// ActorFromContext returns the identity stamped by [WithActor], if any.
func ActorFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}

	identity, ok := ctx.Value(actorContextKey{}).(Identity)
	return identity, ok
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func actorIDFromContext(ctx context.Context) string {
	identity, ok := ActorFromContext(ctx)
	if !ok || identity.AdminID == "" {
		return actorUnknown
	}
	return identity.AdminID
}
