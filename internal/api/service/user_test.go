package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tunecrate/tunecrate/internal/api/domain"
	"github.com/tunecrate/tunecrate/internal/api/store"
	"github.com/tunecrate/tunecrate/pkg/cryptox"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	svc := e.userSvc()
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "hunter2!")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, u.Role)
	require.True(t, u.IsActive)
	require.False(t, u.IsEmailVerified)
	require.NoError(t, cryptox.VerifyPassword("hunter2!", u.PasswordHash))

	_, err = svc.Register(ctx, "alice", "other@example.com", "hunter2!")
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = svc.Register(ctx, "other", "alice@example.com", "hunter2!")
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestGetByIDPermissions(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	svc := e.userSvc()
	ctx := context.Background()

	user := e.createUser(t, "alice", "hunter2!")
	other := e.createUser(t, "bob", "hunter2!")
	admin := e.createUser(t, "carol", "hunter2!", func(u *domain.User) { u.Role = domain.RoleAdmin })

	// Self access is always allowed for regular users.
	got, err := svc.GetByID(ctx, user, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	// A regular user cannot touch anyone else.
	_, err = svc.GetByID(ctx, user, other.ID)
	require.ErrorIs(t, err, domain.ErrNoPermission)

	// Admins can act on regular users.
	_, err = svc.GetByID(ctx, admin, user.ID)
	require.NoError(t, err)

	// Missing target is not found, not a permission error.
	_, err = svc.GetByID(ctx, admin, "missing")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	svc := e.userSvc()
	ctx := context.Background()

	super := e.createUser(t, "root", "hunter2!", func(u *domain.User) { u.Role = domain.RoleSuperAdmin })
	admin := e.createUser(t, "admin", "hunter2!", func(u *domain.User) { u.Role = domain.RoleAdmin })
	user := e.createUser(t, "alice", "hunter2!", func(u *domain.User) { u.IsEmailVerified = true })

	t.Run("email change clears verified flag", func(t *testing.T) {
		email := "new@example.com"
		got, err := svc.Update(ctx, user, user.ID, domain.UserUpdate{Email: &email})
		require.NoError(t, err)
		require.Equal(t, email, got.Email)
		require.False(t, got.IsEmailVerified)
	})

	t.Run("password change rehashes", func(t *testing.T) {
		pw := "correct horse battery staple"
		got, err := svc.Update(ctx, user, user.ID, domain.UserUpdate{Password: &pw})
		require.NoError(t, err)
		require.NoError(t, cryptox.VerifyPassword(pw, got.PasswordHash))
	})

	t.Run("role change needs super admin", func(t *testing.T) {
		role := domain.RoleAdmin
		_, err := svc.Update(ctx, admin, user.ID, domain.UserUpdate{Role: &role})
		require.ErrorIs(t, err, domain.ErrNoPermission)

		got, err := svc.Update(ctx, super, user.ID, domain.UserUpdate{Role: &role})
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, got.Role)

		// Restore so later subtests see a regular user.
		back := domain.RoleUser
		_, err = svc.Update(ctx, super, user.ID, domain.UserUpdate{Role: &back})
		require.NoError(t, err)
	})

	t.Run("unknown role refused", func(t *testing.T) {
		role := domain.Role("owner")
		_, err := svc.Update(ctx, super, user.ID, domain.UserUpdate{Role: &role})
		require.ErrorIs(t, err, domain.ErrNoPermission)
	})

	t.Run("admin cannot update another admin", func(t *testing.T) {
		name := "renamed"
		other := e.createUser(t, "admin2", "hunter2!", func(u *domain.User) { u.Role = domain.RoleAdmin })
		_, err := svc.Update(ctx, admin, other.ID, domain.UserUpdate{Username: &name})
		require.ErrorIs(t, err, domain.ErrNoPermission)
	})
}

func TestDeactivateRevokesSessions(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	svc := e.userSvc()
	auth := e.auth()
	ctx := context.Background()

	admin := e.createUser(t, "admin", "hunter2!", func(u *domain.User) { u.Role = domain.RoleAdmin })
	user := e.createUser(t, "alice", "hunter2!")

	pair, err := auth.Login(ctx, "alice", "hunter2!")
	require.NoError(t, err)
	claims, err := e.codec.Decode(pair.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, admin, user.ID))

	got, err := e.users.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	ok, err := e.redis.Sessions().Exists(ctx, user.ID, claims.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	svc := e.userSvc()
	auth := e.auth()
	ctx := context.Background()

	user := e.createUser(t, "alice", "hunter2!")
	other := e.createUser(t, "bob", "hunter2!")

	_, err := auth.Login(ctx, "alice", "hunter2!")
	require.NoError(t, err)

	// Users cannot delete each other.
	require.ErrorIs(t, svc.Delete(ctx, other, user.ID), domain.ErrNoPermission)

	// But may delete themselves.
	require.NoError(t, svc.Delete(ctx, user, user.ID))

	_, err = e.users.Users().GetUserByID(ctx, user.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	pruned, err := e.redis.Sessions().PruneAllExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, pruned)
}

func TestRevokeSessionsPermission(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	svc := e.userSvc()
	auth := e.auth()
	ctx := context.Background()

	admin := e.createUser(t, "admin", "hunter2!", func(u *domain.User) { u.Role = domain.RoleAdmin })
	user := e.createUser(t, "alice", "hunter2!")
	other := e.createUser(t, "bob", "hunter2!")

	pair, err := auth.Login(ctx, "alice", "hunter2!")
	require.NoError(t, err)
	claims, err := e.codec.Decode(pair.RefreshToken)
	require.NoError(t, err)

	require.ErrorIs(t, svc.RevokeSessions(ctx, other, user.ID), domain.ErrNoPermission)

	require.NoError(t, svc.RevokeSessions(ctx, admin, user.ID))

	ok, err := e.redis.Sessions().Exists(ctx, user.ID, claims.ID)
	require.NoError(t, err)
	require.False(t, ok)
}
