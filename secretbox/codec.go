package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	// KeySize is the required master key length in bytes (AES-256).
	KeySize = 32
	// NonceSize is the GCM nonce length in bytes (96 bits).
	NonceSize = 12
	// TagSize is the GCM authentication tag length in bytes (128 bits).
	TagSize = 16
)

// ErrInvalidKey is returned when the supplied key is not exactly 32 bytes.
var ErrInvalidKey = errors.New("invalid master key")

// ErrDecryptionFailed is returned when authentication fails: wrong key,
// altered ciphertext, altered nonce, altered tag, or malformed field lengths.
// Callers must treat the payload as unrecoverable.
var ErrDecryptionFailed = errors.New("decryption failed")

// EncryptedSecret is the at-rest form of one encrypted payload. The three
// fields are bound together by the authentication tag: changing any of them
// makes [Decrypt] fail. Instances are immutable once created.
type EncryptedSecret struct {
	Ciphertext []byte
	Nonce      []byte
	Tag        []byte
}

type encryptedSecretJSON struct {
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
	Tag        string `json:"tag"`
}

// Encrypt seals plaintext under a 32-byte key with AES-256-GCM.
//
// A fresh random nonce is drawn for every call; callers cannot supply one.
// Two calls with identical inputs produce distinct outputs.
func Encrypt(plaintext []byte, key []byte) (*EncryptedSecret, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce generation: %w", err)
	}

	// Seal appends the tag to the ciphertext; split it back out so the
	// stored record carries the three fields separately.
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	boundary := len(sealed) - TagSize

	secret := &EncryptedSecret{
		Ciphertext: sealed[:boundary:boundary],
		Nonce:      nonce,
		Tag:        sealed[boundary:],
	}
	return secret, nil
}

// Decrypt opens an [EncryptedSecret] under a 32-byte key. The tag is
// verified before any plaintext byte is returned; on any authentication
// or framing failure the result is [ErrDecryptionFailed] with no partial
// output.
func Decrypt(secret *EncryptedSecret, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if secret == nil || len(secret.Nonce) != NonceSize || len(secret.Tag) != TagSize {
		return nil, ErrDecryptionFailed
	}

	sealed := make([]byte, 0, len(secret.Ciphertext)+TagSize)
	sealed = append(sealed, secret.Ciphertext...)
	sealed = append(sealed, secret.Tag...)

	plaintext, err := gcm.Open(nil, secret.Nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// Marshal encodes the secret as a compact JSON record with base64 fields,
// suitable for a single persisted column.
func (s *EncryptedSecret) Marshal() ([]byte, error) {
	if s == nil {
		return nil, ErrDecryptionFailed
	}
	return json.Marshal(encryptedSecretJSON{
		Ciphertext: base64.StdEncoding.EncodeToString(s.Ciphertext),
		Nonce:      base64.StdEncoding.EncodeToString(s.Nonce),
		Tag:        base64.StdEncoding.EncodeToString(s.Tag),
	})
}

// Unmarshal decodes a record produced by [EncryptedSecret.Marshal].
// Framing problems (bad JSON, bad base64, wrong nonce/tag lengths) are
// reported as [ErrDecryptionFailed] so callers see one failure mode for
// every kind of tampering.
func Unmarshal(data []byte) (*EncryptedSecret, error) {
	var raw encryptedSecretJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(raw.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(raw.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	tag, err := base64.StdEncoding.DecodeString(raw.Tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	if len(nonce) != NonceSize || len(tag) != TagSize {
		return nil, ErrDecryptionFailed
	}

	return &EncryptedSecret{Ciphertext: ciphertext, Nonce: nonce, Tag: tag}, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return gcm, nil
}
