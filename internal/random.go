package internal

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// TokenBytes is the default entropy for session tokens (256 bits).
	TokenBytes = 32
	// IDBytes is the entropy for generated identifiers (128 bits).
	IDBytes = 16
)

// NewToken returns a hex-encoded random token with byteLength bytes of
// entropy from the operating system CSPRNG. The storage layer also rejects
// duplicate tokens on insert.
func NewToken(byteLength int) (string, error) {
	if byteLength < 16 {
		return "", errors.New("token length below 16 bytes")
	}

	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("token generation: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// NewSessionToken returns a token with the default session entropy.
func NewSessionToken() (string, error) {
	return NewToken(TokenBytes)
}

// NewID returns a short hex identifier for records that do not need the
// full token entropy.
func NewID() (string, error) {
	return NewToken(IDBytes)
}
