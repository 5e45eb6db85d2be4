package shopadmin

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/miaodi2002/shopadmin/secretbox"
)

// SessionConfig controls session issuance and storage.
type SessionConfig struct {
	// TTL is the fixed lifetime of every session. Refresh re-arms the same
	// TTL from the current time.
	TTL time.Duration

	// RedisPrefix namespaces all session keys.
	RedisPrefix string

	// SweepInterval is how often the background sweeper removes expired
	// sessions. Zero disables the sweeper.
	SweepInterval time.Duration
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int

	// DropIfFull makes Emit non-blocking: events are counted and dropped
	// when the buffer is full instead of applying backpressure.
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// PasswordConfig holds argon2id parameters for admin password hashing.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Config is the engine configuration. The zero value is not usable; start
// from the builder, which applies defaults.
type Config struct {
	// MasterKey is the 32-byte AES-256 key protecting stored credentials.
	// It is loaded once at startup and never logged or serialized.
	MasterKey []byte

	Session  SessionConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
	Password PasswordConfig

	// Now is the clock used for every expiry decision. Defaults to
	// time.Now; tests inject their own.
	Now func() time.Time
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TTL:           24 * time.Hour,
			RedisPrefix:   "sa:sess",
			SweepInterval: time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Now: time.Now,
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.MasterKey = cloneBytes(cfg.MasterKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate checks the configuration for startup-fatal problems.
func (c Config) Validate() error {
	if len(c.MasterKey) != secretbox.KeySize {
		return ErrInvalidMasterKey
	}
	if c.Session.TTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	if c.Session.RedisPrefix == "" {
		return errors.New("session redis prefix must not be empty")
	}
	if c.Session.SweepInterval < 0 {
		return errors.New("sweep interval must not be negative")
	}
	return nil
}

// ParseMasterKey decodes a base64-encoded master key and validates its
// length. A malformed or wrong-length key is a startup error.
func ParseMasterKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMasterKey, err)
	}
	if len(key) != secretbox.KeySize {
		return nil, ErrInvalidMasterKey
	}
	return key, nil
}

// ConfigFromEnv builds a Config from process environment:
//
//	SHOPADMIN_MASTER_KEY   base64-encoded 32-byte key (required)
//	SHOPADMIN_SESSION_TTL  Go duration, e.g. "24h" (optional)
//
// Malformed values are returned as errors so the caller can fail startup.
func ConfigFromEnv() (Config, error) {
	cfg := defaultConfig()

	encoded := os.Getenv("SHOPADMIN_MASTER_KEY")
	if encoded == "" {
		return Config{}, fmt.Errorf("%w: SHOPADMIN_MASTER_KEY not set", ErrInvalidMasterKey)
	}
	key, err := ParseMasterKey(encoded)
	if err != nil {
		return Config{}, err
	}
	cfg.MasterKey = key

	if raw := os.Getenv("SHOPADMIN_SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHOPADMIN_SESSION_TTL: %v", err)
		}
		if ttl <= 0 {
			return Config{}, errors.New("SHOPADMIN_SESSION_TTL must be positive")
		}
		cfg.Session.TTL = ttl
	}

	return cfg, nil
}
