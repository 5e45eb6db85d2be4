// Package shopadmin is the credential protection and session/audit core of
// an account marketplace admin backend: AES-256-GCM sealing of stored
// cloud credentials, opaque-token administrator sessions backed by Redis,
// and an append-only audit trail of every privileged mutation.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// shopadmin is the public surface. It exposes [Engine], [Builder],
// [Config], and value types (Identity, SessionTicket, AuditEvent, ...).
// Ciphertext framing lives in secretbox, session persistence in session,
// relational stores in postgres, and token generation under internal/.
//
// # What this package must NOT do
//
//   - Return raw session tokens or plaintext credentials from any query or
//     introspection surface; only RevealAccountCredentials yields plaintext,
//     and that call is itself audited.
//   - Log, serialize, or otherwise expose the master key.
//   - Fail a business operation because its audit write failed.
//
// # Failure contract
//
// ValidateSession is the hot path. Every validation failure collapses to
// [ErrUnauthenticated]; the specific cause (missing, expired, revoked,
// owner deactivated) is logged for operators but never surfaced to
// callers.
package shopadmin
