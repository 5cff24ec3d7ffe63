package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tunecrate/tunecrate/internal/api/domain"
	"github.com/tunecrate/tunecrate/internal/api/store"
	"github.com/tunecrate/tunecrate/pkg/slogx"
)

// VerificationCodeTTL is how long an emailed code stays redeemable.
const VerificationCodeTTL = 10 * time.Minute

// Mailer delivers a verification code to an address. The SMTP transport
// lives behind this interface so the service never touches mail mechanics.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// VerificationService issues and redeems email verification codes.
type VerificationService struct {
	Users  store.Users
	Codes  store.Codes
	Mailer Mailer
}

// SendCode issues a fresh code for an existing, not-yet-verified account and
// hands it to the mailer. Re-sending replaces the previous code.
func (s *VerificationService) SendCode(ctx context.Context, email string) error {
	user, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	if user.IsEmailVerified {
		return domain.ErrInvalidVerification
	}

	code := uuid.NewString()
	if err := s.Codes.Put(ctx, email, code, VerificationCodeTTL); err != nil {
		return err
	}

	if err := s.Mailer.SendVerificationCode(ctx, email, code); err != nil {
		// The code stays stored; the client may simply retry the send.
		return err
	}

	slogx.FromContext(ctx).Info("verification code sent", slog.String("user_id", user.ID))
	return nil
}

// Confirm redeems a code: on match the account is marked verified and the
// code is consumed. A wrong, expired or never-issued code all read the same.
func (s *VerificationService) Confirm(ctx context.Context, email, code string) error {
	stored, err := s.Codes.Get(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ErrInvalidVerification
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return domain.ErrInvalidVerification
	}

	user, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if err := s.Users.SetEmailVerified(ctx, user.ID, true); err != nil {
		return err
	}
	return s.Codes.Delete(ctx, email)
}
