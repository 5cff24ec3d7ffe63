package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweep(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	auth := e.auth()
	ctx := context.Background()

	u := e.createUser(t, "alice", "hunter2!")

	require.NoError(t, e.redis.Sessions().Create(ctx, u.ID, "dead", time.Now().Add(-time.Minute)))
	require.NoError(t, e.redis.Sessions().Create(ctx, u.ID, "live", time.Now().Add(time.Hour)))

	hk := NewHousekeepingService(auth, slog.Default(), time.Hour)
	hk.Start()
	hk.Stop()

	ok, err := e.redis.Sessions().Exists(ctx, u.ID, "live")
	require.NoError(t, err)
	require.True(t, ok)

	// The expired record was physically removed by the startup sweep.
	pruned, err := auth.PruneExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, pruned)
}

func TestHousekeepingDefaultInterval(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	hk := NewHousekeepingService(e.auth(), slog.Default(), 0)
	require.Equal(t, time.Hour, hk.Interval)
}
