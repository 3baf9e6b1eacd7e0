// Package notify delivers password reset links to account holders.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Notifier sends a reset link to the owner of an account.
type Notifier interface {
	SendPasswordReset(ctx context.Context, toEmail, resetLink string, expiresAt time.Time) error
}

// LogNotifier writes reset links to the application log. It is the
// development sink used when no SMTP server is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) SendPasswordReset(_ context.Context, toEmail, resetLink string, expiresAt time.Time) error {
	log.Info().
		Str("to", toEmail).
		Str("reset_link", resetLink).
		Time("expires_at", expiresAt).
		Msg("password reset link (development mode)")
	return nil
}
