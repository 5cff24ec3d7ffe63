package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/tunecrate/tunecrate/internal/api/store"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStoreWithClient(client, 3), mr
}

func TestSessionsCreateEvictsOldest(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	sessions := s.Sessions()
	ctx := context.Background()

	base := time.Now().Add(time.Hour)
	for i := 0; i < 5; i++ {
		jti := fmt.Sprintf("jti-%d", i)
		err := sessions.Create(ctx, "u1", jti, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	// Cap is 3, so the two oldest must be gone.
	for i, want := range []bool{false, false, true, true, true} {
		ok, err := sessions.Exists(ctx, "u1", fmt.Sprintf("jti-%d", i))
		require.NoError(t, err)
		require.Equal(t, want, ok, "jti-%d", i)
	}
}

func TestSessionsCapIsPerPrincipal(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	sessions := s.Sessions()
	ctx := context.Background()

	exp := time.Now().Add(time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, sessions.Create(ctx, "u1", fmt.Sprintf("a-%d", i), exp.Add(time.Duration(i)*time.Second)))
		require.NoError(t, sessions.Create(ctx, "u2", fmt.Sprintf("b-%d", i), exp.Add(time.Duration(i)*time.Second)))
	}

	for i := 0; i < 3; i++ {
		ok, err := sessions.Exists(ctx, "u1", fmt.Sprintf("a-%d", i))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = sessions.Exists(ctx, "u2", fmt.Sprintf("b-%d", i))
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestSessionsExistsExpired(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	sessions := s.Sessions()
	ctx := context.Background()

	require.NoError(t, sessions.Create(ctx, "u1", "stale", time.Now().Add(-time.Minute)))

	ok, err := sessions.Exists(ctx, "u1", "stale")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSessionsReplaceConsumeOnce(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	sessions := s.Sessions()
	ctx := context.Background()

	exp := time.Now().Add(time.Hour)
	require.NoError(t, sessions.Create(ctx, "u1", "old", exp))

	require.NoError(t, sessions.Replace(ctx, "u1", "old", "new", exp))

	// Second consume of the same record must fail and register nothing.
	err := sessions.Replace(ctx, "u1", "old", "other", exp)
	require.ErrorIs(t, err, store.ErrNotFound)

	ok, err := sessions.Exists(ctx, "u1", "new")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = sessions.Exists(ctx, "u1", "other")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSessionsReplaceConcurrent(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	sessions := s.Sessions()
	ctx := context.Background()

	exp := time.Now().Add(time.Hour)
	require.NoError(t, sessions.Create(ctx, "u1", "old", exp))

	const racers = 8
	errs := make([]error, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = sessions.Replace(ctx, "u1", "old", fmt.Sprintf("new-%d", i), exp)
		}(i)
	}
	wg.Wait()

	var won int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			require.ErrorIs(t, err, store.ErrNotFound)
		}
	}
	require.Equal(t, 1, won)
}

func TestSessionsDeleteIdempotent(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	sessions := s.Sessions()
	ctx := context.Background()

	exp := time.Now().Add(time.Hour)
	require.NoError(t, sessions.Create(ctx, "u1", "jti", exp))
	require.NoError(t, sessions.Delete(ctx, "u1", "jti"))
	require.NoError(t, sessions.Delete(ctx, "u1", "jti"))

	ok, err := sessions.Exists(ctx, "u1", "jti")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSessionsDeleteAll(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	sessions := s.Sessions()
	ctx := context.Background()

	exp := time.Now().Add(time.Hour)
	require.NoError(t, sessions.Create(ctx, "u1", "a", exp))
	require.NoError(t, sessions.Create(ctx, "u1", "b", exp))
	require.NoError(t, sessions.Create(ctx, "u2", "c", exp))

	require.NoError(t, sessions.DeleteAll(ctx, "u1"))

	for _, jti := range []string{"a", "b"} {
		ok, err := sessions.Exists(ctx, "u1", jti)
		require.NoError(t, err)
		require.False(t, ok)
	}

	ok, err := sessions.Exists(ctx, "u2", "c")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSessionsPruneAllExpired(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	sessions := s.Sessions()
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	require.NoError(t, sessions.Create(ctx, "u1", "dead-1", past))
	require.NoError(t, sessions.Create(ctx, "u1", "live-1", future))
	require.NoError(t, sessions.Create(ctx, "u2", "dead-2", past))

	pruned, err := sessions.PruneAllExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, pruned)

	ok, err := sessions.Exists(ctx, "u1", "live-1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSessionsUnavailable(t *testing.T) {
	t.Parallel()

	s, mr := newTestStore(t)
	sessions := s.Sessions()
	ctx := context.Background()

	mr.Close()

	err := sessions.Create(ctx, "u1", "jti", time.Now().Add(time.Hour))
	require.Error(t, err)
	require.True(t, errors.Is(err, store.ErrUnavailable))
}
