package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/tunecrate/tunecrate/internal/api/domain"
	"github.com/tunecrate/tunecrate/internal/api/service"
	"github.com/tunecrate/tunecrate/pkg/httpx"
	"github.com/tunecrate/tunecrate/pkg/jwtx"
)

type actorKey struct{}

// ActorFromContext returns the authenticated user placed there by
// AuthnMiddleware. The bool is false on unauthenticated routes.
func ActorFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(actorKey{}).(domain.User)
	return u, ok
}

// bearerToken extracts the token from an Authorization header. Empty string
// when the header is missing or not a bearer scheme.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// AuthnMiddleware authenticates the access token on the request, resolves
// the account and stores it in the context. Requests with a missing, bad or
// wrong-type token never reach the wrapped handler.
func AuthnMiddleware(gate *service.TokenGate) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeDomainError(w, domain.ErrInvalidToken)
				return
			}

			claims, err := gate.Authenticate(token)
			if err != nil {
				writeDomainError(w, err)
				return
			}

			user, err := gate.ResolvePrincipal(r.Context(), claims, jwtx.TokenTypeAccess)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			if err := gate.RequireActive(user); err != nil {
				writeDomainError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
