// Package redis implements the fast key-value side of the store layer: the
// refresh-session registry, email verification codes and download-operation
// records. All of it is ephemeral-by-design state with TTLs; durable data
// (users) lives in the sqlite driver.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/tunecrate/tunecrate/internal/api/store"
)

// DefaultSessionLimit caps live refresh tokens per principal.
const DefaultSessionLimit = 5

type Config struct {
	Addr     string
	Password string
	DB       int

	// SessionLimit overrides DefaultSessionLimit when > 0.
	SessionLimit int
}

type Store struct {
	rdb          *goredis.Client
	sessionLimit int
}

func NewStore(cfg Config) *Store {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newStore(rdb, cfg.SessionLimit)
}

// NewStoreWithClient wraps an existing client; tests use this with miniredis.
func NewStoreWithClient(rdb *goredis.Client, sessionLimit int) *Store {
	return newStore(rdb, sessionLimit)
}

func newStore(rdb *goredis.Client, sessionLimit int) *Store {
	if sessionLimit <= 0 {
		sessionLimit = DefaultSessionLimit
	}
	return &Store{rdb: rdb, sessionLimit: sessionLimit}
}

func (s *Store) Sessions() store.Sessions     { return &sessionsRepo{rdb: s.rdb, limit: s.sessionLimit} }
func (s *Store) Codes() store.Codes           { return &codesRepo{rdb: s.rdb} }
func (s *Store) Operations() store.Operations { return &operationsRepo{rdb: s.rdb} }

func (s *Store) Close() error { return s.rdb.Close() }

// Ping verifies the connection is alive, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return mapErr(err)
	}
	return nil
}

// mapErr normalizes go-redis errors into the store taxonomy: a missing key
// is ErrNotFound, anything else means the store is unreachable and wraps
// ErrUnavailable so callers can classify without knowing the driver.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, goredis.Nil) {
		return store.ErrNotFound
	}
	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}
