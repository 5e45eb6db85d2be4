// Package secretbox implements authenticated encryption for long-lived
// marketplace secrets (cloud credentials, third-party API keys) at rest.
//
// # Design
//
// Encryption is AES-256-GCM with a fresh, cryptographically random 96-bit
// nonce per call and a 128-bit authentication tag. The tag is verified
// before any plaintext is released; a flipped bit anywhere in ciphertext,
// nonce, or tag fails the whole decryption. Encrypting the same plaintext
// twice yields different (ciphertext, nonce) pairs.
//
// The master key is an explicit 32-byte parameter on every call. This
// package never stores, logs, or serializes key material.
//
// # Architecture boundaries
//
// This package is pure CPU: no I/O, no clocks, no sibling imports.
// Persistence of the resulting [EncryptedSecret] belongs to callers.
package secretbox
