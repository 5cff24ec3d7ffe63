package service

import (
	"context"
	"errors"

	"github.com/tunecrate/tunecrate/internal/api/domain"
	"github.com/tunecrate/tunecrate/internal/api/store"
	"github.com/tunecrate/tunecrate/pkg/jwtx"
)

// TokenGate authenticates bearer tokens for request handling. Access tokens
// are validated statelessly against the codec alone; refresh tokens are
// additionally checked against the session registry so revocation takes
// effect immediately.
type TokenGate struct {
	Users    store.Users
	Sessions store.Sessions
	Codec    *jwtx.Codec
}

// Authenticate decodes and verifies a raw bearer token. Every decode
// failure, whatever the cause, collapses into ErrInvalidToken.
func (g *TokenGate) Authenticate(token string) (jwtx.Claims, error) {
	claims, err := g.Codec.Decode(token)
	if err != nil {
		return jwtx.Claims{}, domain.ErrInvalidToken
	}
	return claims, nil
}

// RequireType rejects tokens of the wrong kind, e.g. a refresh token offered
// where an access token is expected.
func (g *TokenGate) RequireType(claims jwtx.Claims, typ jwtx.TokenType) error {
	if !claims.IsType(typ) {
		return domain.ErrInvalidToken
	}
	return nil
}

// ResolvePrincipal turns validated claims into the user they identify. For
// refresh tokens the session registry must still hold the jti; a revoked or
// rotated token reads exactly like one that never existed.
func (g *TokenGate) ResolvePrincipal(ctx context.Context, claims jwtx.Claims, typ jwtx.TokenType) (domain.User, error) {
	if err := g.RequireType(claims, typ); err != nil {
		return domain.User{}, err
	}

	if typ == jwtx.TokenTypeRefresh {
		ok, err := g.Sessions.Exists(ctx, claims.Subject, claims.ID)
		if err != nil {
			return domain.User{}, err
		}
		if !ok {
			return domain.User{}, domain.ErrInvalidToken
		}
	}

	user, err := g.Users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// RequireActive rejects deactivated accounts.
func (g *TokenGate) RequireActive(user domain.User) error {
	if !user.IsActive {
		return domain.ErrInactiveAccount
	}
	return nil
}
