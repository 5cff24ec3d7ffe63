package domain

import "errors"

// Core error taxonomy. Handlers map these to status codes; nothing below the
// HTTP layer ever inspects status codes.
var (
	// ErrInvalidCredentials covers both "no such user" and "wrong password"
	// so login failures cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInactiveAccount is a deactivated account, or an unverified email
	// when the verified-email login policy is enabled.
	ErrInactiveAccount = errors.New("inactive_account")

	// ErrInvalidToken deliberately unifies bad signature, malformed token,
	// expired token, wrong token type and refresh-not-in-registry. Callers
	// must not be able to tell a revoked token from one that never existed.
	ErrInvalidToken = errors.New("invalid_token")

	// ErrNoPermission is a role-matrix denial.
	ErrNoPermission = errors.New("no_permission")

	ErrUserNotFound = errors.New("user_not_found")

	// ErrInvalidVerification is a wrong, expired or never-issued email
	// verification code.
	ErrInvalidVerification = errors.New("invalid_verification")
)

// Music download operation errors.
var (
	ErrOperationNotFound = errors.New("operation_not_found")
	ErrFileNotReady      = errors.New("file_not_ready")
	ErrTrackTooLong      = errors.New("track_too_long")
)
