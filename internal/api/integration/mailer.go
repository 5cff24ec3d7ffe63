// Package integration provides the default implementations of the
// collaborator interfaces the services depend on. Production deployments
// swap these for real SMTP and object-storage backends.
package integration

import (
	"context"
	"log/slog"
)

// LogMailer writes verification codes to the log instead of sending mail.
// Good enough for dev and for deployments that scrape codes out of the log
// pipeline.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) SendVerificationCode(_ context.Context, email, code string) error {
	m.Logger.Info("verification code issued",
		slog.String("email", email),
		slog.String("code", code),
	)
	return nil
}
