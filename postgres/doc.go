// Package postgres provides pgx-backed implementations of the engine's
// storage interfaces: admins, marketplace accounts, encrypted credential
// blobs, and the append-only audit trail.
//
// Rows never hold plaintext credentials. The credentials table stores the
// opaque sealed blob the engine hands over, and the audit table stores
// whatever redacted metadata the engine already approved.
package postgres
