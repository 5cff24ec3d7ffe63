package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tunecrate/tunecrate/internal/api/domain"
	"github.com/tunecrate/tunecrate/internal/api/store"
	"github.com/tunecrate/tunecrate/pkg/cryptox"
	"github.com/tunecrate/tunecrate/pkg/jwtx"
	"github.com/tunecrate/tunecrate/pkg/slogx"
)

// AuthService owns the token lifecycle: minting pairs at login, rotating
// refresh tokens, and revoking session records. Token validity is decided by
// two layers acting together: the codec proves authenticity and freshness,
// the session registry proves the refresh token is still honoured.
type AuthService struct {
	Users    store.Users
	Sessions store.Sessions
	Codec    *jwtx.Codec

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// RequireVerifiedEmail makes login refuse accounts that have not
	// confirmed their email address yet.
	RequireVerifiedEmail bool
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// Login authenticates by username or email plus password and returns a fresh
// token pair. Missing users and wrong passwords are indistinguishable to the
// caller. Nothing is minted or registered on any failure.
func (s *AuthService) Login(ctx context.Context, login, password string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Users.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn time comparable to a real verify so response timing
			// does not leak account existence.
			_ = cryptox.VerifyPassword(password, cryptox.DummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("login failed", slog.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrInactiveAccount
	}
	if s.RequireVerifiedEmail && !user.IsEmailVerified {
		return nil, domain.ErrInactiveAccount
	}

	pair, refreshClaims, err := s.mintPair(user.ID, s.refreshTTL())
	if err != nil {
		return nil, err
	}

	if err := s.Sessions.Create(ctx, user.ID, refreshClaims.ID, refreshClaims.ExpiresAt.Time); err != nil {
		return nil, err
	}

	l.Info("login succeeded", slog.String("user_id", user.ID))
	return pair, nil
}

// Refresh rotates a decoded refresh token into a fresh pair. The new refresh
// token inherits the remaining lifetime of the old one, rounded up to a whole
// minute, so a session's absolute expiry never moves. Rotation is
// consume-once: of two concurrent refreshes with the same token exactly one
// wins and the other gets ErrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, claims jwtx.Claims) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	if !claims.IsType(jwtx.TokenTypeRefresh) {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.Users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveAccount
	}

	remaining := claims.RemainingAt(time.Now())
	if remaining <= 0 {
		return nil, domain.ErrInvalidToken
	}

	pair, refreshClaims, err := s.mintPair(user.ID, remaining)
	if err != nil {
		return nil, err
	}

	err = s.Sessions.Replace(ctx, user.ID, claims.ID, refreshClaims.ID, refreshClaims.ExpiresAt.Time)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Already rotated, revoked or never registered. From the
			// caller's side these are all the same invalid token.
			l.Info("refresh token not in registry", slog.String("user_id", user.ID))
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	return pair, nil
}

// Logout removes one session record. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, userID, jti string) error {
	return s.Sessions.Delete(ctx, userID, jti)
}

// RevokeAll terminates every session of a principal. Outstanding access
// tokens stay valid until they expire; only refresh stops working.
func (s *AuthService) RevokeAll(ctx context.Context, userID string) error {
	return s.Sessions.DeleteAll(ctx, userID)
}

// PruneExpired sweeps expired session records across all principals.
func (s *AuthService) PruneExpired(ctx context.Context) (int, error) {
	return s.Sessions.PruneAllExpired(ctx)
}

func (s *AuthService) mintPair(userID string, refreshTTL time.Duration) (*domain.TokenPair, jwtx.Claims, error) {
	access, _, err := s.Codec.Encode(userID, jwtx.TokenTypeAccess, s.accessTTL())
	if err != nil {
		return nil, jwtx.Claims{}, err
	}

	refresh, refreshClaims, err := s.Codec.Encode(userID, jwtx.TokenTypeRefresh, refreshTTL)
	if err != nil {
		return nil, jwtx.Claims{}, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}, refreshClaims, nil
}
