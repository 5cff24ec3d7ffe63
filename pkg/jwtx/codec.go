package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tunecrate/tunecrate/pkg/idx"
)

// Codec mints and verifies HS256 tokens with a single symmetric key. It is
// stateless: decoding never consults any store, so access tokens validate
// without a round trip.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
	newJTI func() string
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source, for deterministic expiry tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithJTISource overrides the jti generator.
func WithJTISource(newJTI func() string) Option {
	return func(c *Codec) { c.newJTI = newJTI }
}

// NewCodec builds a Codec signing with secret and stamping issuer into every
// token. By default jtis are ULIDs, so a principal's tokens sort by mint time.
func NewCodec(secret []byte, issuer string, opts ...Option) *Codec {
	c := &Codec{
		secret: secret,
		issuer: issuer,
		now:    time.Now,
		newJTI: func() string { return idx.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode mints a signed token for subject with a fresh jti, iat = now and
// exp = now + ttl. The returned Claims are what a later Decode yields.
func (c *Codec) Encode(subject string, typ TokenType, ttl time.Duration) (string, Claims, error) {
	now := c.now().UTC().Truncate(time.Second)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        c.newJTI(),
		},
		Type: typ,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}

// Decode verifies the signature and structure of token and checks expiry
// against the codec clock. It deliberately knows nothing about session
// registration; refresh-token liveness is the caller's concern.
func (c *Codec) Decode(token string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, ErrInvalidSig
	default:
		return Claims{}, ErrMalformed
	}

	if claims.Subject == "" || claims.ID == "" {
		return Claims{}, ErrInvalidClaim
	}
	if claims.Type != TokenTypeAccess && claims.Type != TokenTypeRefresh {
		return Claims{}, ErrInvalidClaim
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return Claims{}, ErrInvalidClaim
	}
	if err := claims.ValidateExpiryAt(c.now().UTC()); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
