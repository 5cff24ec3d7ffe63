package http

import (
	"errors"
	"net/http"

	"github.com/tunecrate/tunecrate/internal/api/domain"
	"github.com/tunecrate/tunecrate/internal/api/store"
	"github.com/tunecrate/tunecrate/pkg/httpx"
)

// writeDomainError maps core errors onto the wire. Every invalid-token
// sub-cause shares one 401 body so a caller cannot probe which check failed,
// and invalid credentials are equally opaque.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
	case errors.Is(err, domain.ErrInvalidToken):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "token is invalid or expired")
	case errors.Is(err, domain.ErrInactiveAccount):
		httpx.WriteError(w, http.StatusForbidden, "inactive_account", "account is not active")
	case errors.Is(err, domain.ErrNoPermission):
		httpx.WriteError(w, http.StatusForbidden, "no_permission", "not allowed to act on this user")
	case errors.Is(err, domain.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "user_not_found", "no such user")
	case errors.Is(err, domain.ErrInvalidVerification):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_verification", "verification code is invalid or expired")
	case errors.Is(err, domain.ErrOperationNotFound):
		httpx.WriteError(w, http.StatusNotFound, "operation_not_found", "no such download operation")
	case errors.Is(err, domain.ErrTrackTooLong):
		httpx.WriteError(w, http.StatusBadRequest, "track_too_long", "track exceeds the duration limit")
	case errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "already_exists", "username or email is taken")
	case errors.Is(err, store.ErrUnavailable):
		httpx.WriteError(w, http.StatusServiceUnavailable, "unavailable", "a backing store is unreachable")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
