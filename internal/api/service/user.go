package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tunecrate/tunecrate/internal/api/domain"
	"github.com/tunecrate/tunecrate/internal/api/store"
	"github.com/tunecrate/tunecrate/pkg/cryptox"
	"github.com/tunecrate/tunecrate/pkg/idx"
	"github.com/tunecrate/tunecrate/pkg/slogx"
)

// UserService manages principals. Every cross-principal operation is guarded
// by the role matrix in domain; the store only ever sees requests that
// already passed it.
type UserService struct {
	Users    store.Users
	Sessions store.Sessions
}

// Register creates a new account with the user role. Duplicate username or
// email surfaces as store.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Users.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", user.ID))
	return user, nil
}

// GetByID fetches a user the actor is allowed to see.
func (s *UserService) GetByID(ctx context.Context, actor domain.User, userID string) (domain.User, error) {
	user, err := s.getTarget(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if !domain.CanAct(actor, user) {
		return domain.User{}, domain.ErrNoPermission
	}
	return user, nil
}

// Update applies the non-nil fields of upd to the target. Changing the email
// clears the verified flag; changing the role requires the super admin role
// on top of the usual matrix.
func (s *UserService) Update(ctx context.Context, actor domain.User, userID string, upd domain.UserUpdate) (domain.User, error) {
	user, err := s.getTarget(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if !domain.CanAct(actor, user) {
		return domain.User{}, domain.ErrNoPermission
	}

	if upd.Username != nil {
		user.Username = *upd.Username
	}
	if upd.Email != nil && *upd.Email != user.Email {
		user.Email = *upd.Email
		user.IsEmailVerified = false
	}
	if upd.Password != nil {
		hash, err := cryptox.HashPassword(*upd.Password)
		if err != nil {
			return domain.User{}, err
		}
		user.PasswordHash = hash
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}
	if upd.Role != nil {
		if !domain.CanAssignRole(actor) {
			return domain.User{}, domain.ErrNoPermission
		}
		if !upd.Role.Valid() {
			return domain.User{}, domain.ErrNoPermission
		}
		user.Role = *upd.Role
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.Users.UpdateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Deactivate flips the account inactive and revokes every session, so the
// lockout takes effect on the next refresh rather than in up to a refresh
// TTL.
func (s *UserService) Deactivate(ctx context.Context, actor domain.User, userID string) error {
	inactive := false
	if _, err := s.Update(ctx, actor, userID, domain.UserUpdate{IsActive: &inactive}); err != nil {
		return err
	}
	return s.Sessions.DeleteAll(ctx, userID)
}

// Delete removes the account and all its session records.
func (s *UserService) Delete(ctx context.Context, actor domain.User, userID string) error {
	user, err := s.getTarget(ctx, userID)
	if err != nil {
		return err
	}
	if !domain.CanAct(actor, user) {
		return domain.ErrNoPermission
	}

	if err := s.Users.DeleteUser(ctx, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	return s.Sessions.DeleteAll(ctx, user.ID)
}

// RevokeSessions is RevokeAll gated by the permission matrix, for the
// terminate-all-sessions admin endpoint.
func (s *UserService) RevokeSessions(ctx context.Context, actor domain.User, userID string) error {
	user, err := s.getTarget(ctx, userID)
	if err != nil {
		return err
	}
	if !domain.CanAct(actor, user) {
		return domain.ErrNoPermission
	}
	return s.Sessions.DeleteAll(ctx, user.ID)
}

func (s *UserService) getTarget(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}
