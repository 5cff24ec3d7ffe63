package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/tunecrate/tunecrate/internal/api/domain"
	redisstore "github.com/tunecrate/tunecrate/internal/api/store/drivers/redis"
	"github.com/tunecrate/tunecrate/internal/api/store/drivers/sqlite"
	"github.com/tunecrate/tunecrate/pkg/cryptox"
	"github.com/tunecrate/tunecrate/pkg/idx"
	"github.com/tunecrate/tunecrate/pkg/jwtx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test-")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// env bundles the real stores every service test runs against: sqlite in
// memory for users, miniredis for everything ephemeral.
type env struct {
	users    *sqlite.Store
	redis    *redisstore.Store
	codec    *jwtx.Codec
	sessions int
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.ApplyMigrations())

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	const sessionLimit = 5
	return &env{
		users:    db,
		redis:    redisstore.NewStoreWithClient(client, sessionLimit),
		codec:    jwtx.NewCodec([]byte("test-secret"), "tunecrate-test"),
		sessions: sessionLimit,
	}
}

func (e *env) auth() *AuthService {
	return &AuthService{
		Users:    e.users.Users(),
		Sessions: e.redis.Sessions(),
		Codec:    e.codec,
	}
}

func (e *env) gate() *TokenGate {
	return &TokenGate{
		Users:    e.users.Users(),
		Sessions: e.redis.Sessions(),
		Codec:    e.codec,
	}
}

func (e *env) userSvc() *UserService {
	return &UserService{
		Users:    e.users.Users(),
		Sessions: e.redis.Sessions(),
	}
}

func (e *env) createUser(t *testing.T, username, password string, mut ...func(*domain.User)) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, fn := range mut {
		fn(&u)
	}
	require.NoError(t, e.users.Users().CreateUser(context.Background(), u))
	return u
}
