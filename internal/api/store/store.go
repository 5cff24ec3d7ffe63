package store

import (
	"context"
	"errors"
	"time"

	"github.com/tunecrate/tunecrate/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrUnavailable wraps transport failures talking to a backing store.
	// It always propagates to the caller; nothing in the core retries.
	ErrUnavailable = errors.New("store: unavailable")
)

// Users is the principal repository. Backed by SQLite; the auth core only
// ever reads through it or hands it whole rows.
type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByLogin resolves a username OR email address, used during login.
	GetUserByLogin(ctx context.Context, login string) (domain.User, error)

	// GetUserByEmail resolves an email address, used for verification flows.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Duplicate username or email returns ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser rewrites the mutable columns of an existing row and bumps
	// updated_at. Uniqueness clashes return ErrAlreadyExists.
	UpdateUser(ctx context.Context, u domain.User) error

	// SetEmailVerified flips the verified flag.
	SetEmailVerified(ctx context.Context, userID string, verified bool) error

	// DeleteUser removes the row. Session records are cleaned up separately
	// by the caller since they live in a different store.
	DeleteUser(ctx context.Context, userID string) error
}

// Sessions is the registry of live refresh tokens, one bounded set per
// principal. Keys for different principals never contend.
type Sessions interface {
	// Create registers jti for userID and atomically evicts the oldest
	// records beyond the per-principal cap.
	Create(ctx context.Context, userID, jti string, expiresAt time.Time) error

	// Exists reports whether jti is registered and not yet expired.
	Exists(ctx context.Context, userID, jti string) (bool, error)

	// Replace atomically consumes oldJTI and registers newJTI. If oldJTI is
	// no longer registered (already rotated, revoked or pruned) it returns
	// ErrNotFound and registers nothing: rotation is consume-once.
	Replace(ctx context.Context, userID, oldJTI, newJTI string, expiresAt time.Time) error

	// Delete removes one record. Idempotent; absent records are not an error.
	Delete(ctx context.Context, userID, jti string) error

	// DeleteAll removes every record for a principal (log out everywhere).
	DeleteAll(ctx context.Context, userID string) error

	// PruneExpired removes expired records for one principal.
	PruneExpired(ctx context.Context, userID string) error

	// PruneAllExpired sweeps every principal and returns how many records
	// were removed. Housekeeping only, never on the request path.
	PruneAllExpired(ctx context.Context) (int, error)
}

// Codes stores short-lived email verification codes.
type Codes interface {
	// Put stores code for email with the given TTL, replacing any previous one.
	Put(ctx context.Context, email, code string, ttl time.Duration) error

	// Get returns the current code, or ErrNotFound when absent or expired.
	Get(ctx context.Context, email string) (string, error)

	// Delete removes the code. Idempotent.
	Delete(ctx context.Context, email string) error
}

// Operations tracks background audio-download operations. Records carry
// their own TTL; expired operations simply read as not found.
type Operations interface {
	// Create inserts a pending operation with the given TTL.
	Create(ctx context.Context, id string, ttl time.Duration) error

	// Complete marks the operation ready with its result fields.
	Complete(ctx context.Context, id, title, filename, link string) error

	// Fail marks the operation finished with the given terminal status.
	Fail(ctx context.Context, id string, status domain.OperationStatus) error

	// Get returns the operation, or ErrNotFound when absent or expired.
	Get(ctx context.Context, id string) (domain.DownloadOperation, error)
}
