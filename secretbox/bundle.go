package secretbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrBundleFormat is returned when decrypted bytes are authentic but do not
// parse as a credential bundle. This indicates a data-integrity bug rather
// than tampering and should be logged at high severity by callers.
var ErrBundleFormat = errors.New("credential bundle format invalid")

// MaskToken replaces the hidden remainder of a sensitive value in previews.
const MaskToken = "****"

const maskPrefixLen = 8

// Bundle is a named set of credential fields (access key id, secret key,
// region, ...). Absent optional fields stay absent through an
// encrypt/decrypt round trip; nothing is defaulted.
type Bundle map[string]string

// EncryptBundle serializes the bundle to canonical JSON (sorted keys) and
// seals it with [Encrypt]. The canonical form makes the codec deterministic
// in its input shape even though the output is randomized by the nonce.
func EncryptBundle(fields Bundle, key []byte) (*EncryptedSecret, error) {
	if fields == nil {
		return nil, fmt.Errorf("%w: nil bundle", ErrBundleFormat)
	}

	// encoding/json already emits map keys in sorted order; marshalling
	// the map directly is the canonical encoding.
	plaintext, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBundleFormat, err)
	}

	return Encrypt(plaintext, key)
}

// DecryptBundle opens a sealed bundle and reparses the field set.
// Round-trip law: DecryptBundle(EncryptBundle(F, k), k) == F.
func DecryptBundle(secret *EncryptedSecret, key []byte) (Bundle, error) {
	plaintext, err := Decrypt(secret, key)
	if err != nil {
		return nil, err
	}

	var fields Bundle
	if err := json.Unmarshal(plaintext, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBundleFormat, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: null bundle", ErrBundleFormat)
	}
	return fields, nil
}

// MaskPreview produces a redacted display form of a sensitive value: the
// first 8 characters followed by [MaskToken]. Values at or under 8
// characters are fully masked. The prefix is counted in runes so multibyte
// values are never split mid-character. Safe for audit metadata and
// dashboards.
func MaskPreview(value string) string {
	runes := []rune(value)
	if len(runes) <= maskPrefixLen {
		return MaskToken
	}
	return string(runes[:maskPrefixLen]) + MaskToken
}

// FieldNames returns the bundle's field names in sorted order, for audit
// metadata that must never carry the values themselves.
func (b Bundle) FieldNames() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether two bundles carry the same field set, field for
// field.
func (b Bundle) Equal(other Bundle) bool {
	if len(b) != len(other) {
		return false
	}
	for name, value := range b {
		if got, ok := other[name]; !ok || got != value {
			return false
		}
	}
	return true
}

// JoinedFieldNames is a convenience for single-string audit metadata.
func (b Bundle) JoinedFieldNames() string {
	return strings.Join(b.FieldNames(), ",")
}
