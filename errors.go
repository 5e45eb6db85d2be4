package shopadmin

import "errors"

var (
	// ErrInvalidMasterKey is returned when the configured master key is not
	// exactly 32 bytes. Startup must treat this as fatal.
	ErrInvalidMasterKey = errors.New("master key must be exactly 32 bytes")

	// ErrUnauthenticated is the single error surfaced for every session
	// validation failure. Callers cannot distinguish a missing token from an
	// expired or revoked one.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInvalidCredentials is returned for any failed login, regardless of
	// whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrLoginRateLimited = errors.New("login rate limited")

	ErrAdminNotFound   = errors.New("admin not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")

	ErrCredentialsNotFound = errors.New("credentials not found")

	// ErrCredentialsUnavailable is the generic failure returned when stored
	// credentials cannot be decrypted or fetched. The underlying cause is
	// logged, never returned.
	ErrCredentialsUnavailable = errors.New("credentials unavailable")

	ErrSessionCreationFailed = errors.New("session creation failed")

	// ErrRepositoryUnavailable wraps relational store transport failures.
	ErrRepositoryUnavailable = errors.New("repository unavailable")

	ErrEngineNotReady = errors.New("engine not fully configured")
)
