package jwtx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tunecrate/tunecrate/pkg/jwtx"
)

var testSecret = []byte("unit-test-signing-secret")

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	codec := jwtx.NewCodec(testSecret, "tunecrate-api")

	token, minted, err := codec.Encode("user-1", jwtx.TokenTypeRefresh, 30*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, minted.ID)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, jwtx.TokenTypeRefresh, claims.Type)
	require.Equal(t, minted.ID, claims.ID)
	require.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}

func TestDecodeRejectsForeignSignature(t *testing.T) {
	t.Parallel()

	codec := jwtx.NewCodec(testSecret, "tunecrate-api")
	other := jwtx.NewCodec([]byte("a-different-secret"), "tunecrate-api")

	token, _, err := other.Encode("user-1", jwtx.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	_, err = codec.Decode(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	codec := jwtx.NewCodec(testSecret, "tunecrate-api")

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := codec.Decode(token)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	}
}

func TestDecodeRejectsIssuerMismatch(t *testing.T) {
	t.Parallel()

	minter := jwtx.NewCodec(testSecret, "someone-else")
	codec := jwtx.NewCodec(testSecret, "tunecrate-api")

	token, _, err := minter.Encode("user-1", jwtx.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	_, err = codec.Decode(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
}

func TestExpiryBoundary(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := at
	codec := jwtx.NewCodec(testSecret, "tunecrate-api",
		jwtx.WithClock(func() time.Time { return clock }),
	)

	// ttl=0 decodes at the instant it was minted...
	token, _, err := codec.Encode("user-1", jwtx.TokenTypeAccess, 0)
	require.NoError(t, err)

	_, err = codec.Decode(token)
	require.NoError(t, err)

	// ...but fails one second later.
	clock = at.Add(time.Second)
	_, err = codec.Decode(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestJTIsAreUnique(t *testing.T) {
	t.Parallel()

	codec := jwtx.NewCodec(testSecret, "tunecrate-api")

	seen := make(map[string]struct{})
	for range 50 {
		_, claims, err := codec.Encode("user-1", jwtx.TokenTypeRefresh, time.Hour)
		require.NoError(t, err)
		_, dup := seen[claims.ID]
		require.False(t, dup, "jti issued twice")
		seen[claims.ID] = struct{}{}
	}
}

func TestRemainingAtRoundsUpToWholeMinute(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec := jwtx.NewCodec(testSecret, "tunecrate-api", jwtx.WithClock(fixedClock(at)))

	_, claims, err := codec.Encode("user-1", jwtx.TokenTypeRefresh, 30*time.Minute)
	require.NoError(t, err)

	require.Equal(t, 30*time.Minute, claims.RemainingAt(at))
	require.Equal(t, 25*time.Minute, claims.RemainingAt(at.Add(5*time.Minute)))
	require.Equal(t, 25*time.Minute, claims.RemainingAt(at.Add(4*time.Minute+30*time.Second)))
	require.Equal(t, time.Duration(0), claims.RemainingAt(at.Add(time.Hour)))
}
