package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType tags a token as an access or refresh token. The tag travels in
// the signed claims so one kind can never be replayed as the other.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Default token TTLs. Access tokens are short-lived; refresh tokens carry
// the session lifetime (31 days).
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 31 * 24 * time.Hour
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// Claims is the signed token payload: the registered sub/jti/iat/exp set
// plus the token type tag.
type Claims struct {
	jwt.RegisteredClaims

	Type TokenType `json:"type"`
}

// IsType reports whether the token carries the expected type tag.
func (c *Claims) IsType(expected TokenType) bool {
	return c.Type == expected
}

// ValidateExpiryAt checks exp against the given instant. A token is valid
// up to and including its expiry second; anything later fails.
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}

// RemainingAt returns the lifetime the token still has at the given instant,
// rounded up to the next whole minute. Rotated refresh tokens reuse this so
// refreshing preserves the absolute expiry instead of resetting it.
func (c *Claims) RemainingAt(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := c.ExpiresAt.Time.Sub(now)
	if remaining <= 0 {
		return 0
	}
	if rem := remaining % time.Minute; rem != 0 {
		remaining += time.Minute - rem
	}
	return remaining
}
