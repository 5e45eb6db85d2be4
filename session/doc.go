// Package session provides the Redis-backed store for administrator
// sessions referenced by opaque tokens.
//
// # Design
//
// Each session is one Redis string keyed by its token, encoded in a compact
// versioned binary form, with the Redis TTL mirroring the session expiry.
// Two secondary structures are maintained alongside: a ZSET indexing tokens
// by expiry (for batch sweeps) and a per-admin SET of tokens (for
// introspection and revoke-all). Insert is atomic on the token key (SET NX)
// so a duplicate token can never silently overwrite a live session.
//
// The store performs no expiry arithmetic of its own beyond the sweep
// cutoff it is handed; deciding whether a session is still valid is the
// engine's job, with its injected clock.
package session
