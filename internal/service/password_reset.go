package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/contactdir/contact-server-go/internal/auth"
	apperrors "github.com/contactdir/contact-server-go/internal/errors"
	"github.com/contactdir/contact-server-go/internal/model"
	"github.com/contactdir/contact-server-go/internal/notify"
	"github.com/contactdir/contact-server-go/internal/repository"
	"github.com/contactdir/contact-server-go/internal/util"
)

// PasswordResetService manages the reset token stored on each account.
// A token is expired once now >= its expiry.
type PasswordResetService struct {
	accounts    repository.AccountRepository
	hasher      auth.PasswordHasher
	notifier    notify.Notifier
	ttl         time.Duration
	frontendURL string

	// Now is the clock used for issuing and checking tokens.
	Now func() time.Time
}

func NewPasswordResetService(
	accounts repository.AccountRepository,
	hasher auth.PasswordHasher,
	notifier notify.Notifier,
	ttl time.Duration,
	frontendURL string,
) *PasswordResetService {
	return &PasswordResetService{
		accounts:    accounts,
		hasher:      hasher,
		notifier:    notifier,
		ttl:         ttl,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		Now:         time.Now,
	}
}

// InitiateReset stores a fresh token on the account, replacing any pending
// one, and sends the reset link. Callers must not reveal AccountNotFound to
// the client.
func (s *PasswordResetService) InitiateReset(ctx context.Context, email string) error {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.Database(err)
	}
	if account == nil {
		return apperrors.AccountNotFound()
	}
	if account.HasPendingReset() {
		log.Info().Str("account_id", account.ID).Msg("replacing pending password reset token")
	}

	token := uuid.NewString()
	expiresAt := s.Now().Add(s.ttl)
	if err := s.accounts.SetResetToken(ctx, account.ID, token, expiresAt); err != nil {
		return apperrors.Database(err)
	}

	log.Info().
		Str("account_id", account.ID).
		Str("token", util.Fingerprint(token)).
		Time("expires_at", expiresAt).
		Msg("password reset token issued")

	if err := s.notifier.SendPasswordReset(ctx, account.Email, s.ResetLink(token), expiresAt); err != nil {
		log.Error().Err(err).Str("account_id", account.ID).Msg("failed to send password reset link")
	}
	return nil
}

func (s *PasswordResetService) ResetLink(token string) string {
	return s.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
}

// ValidateToken reports the state of token without changing it.
func (s *PasswordResetService) ValidateToken(ctx context.Context, token string) (*model.ResetTokenStatus, error) {
	account, err := s.accounts.FindByResetToken(ctx, token)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if account == nil {
		return nil, apperrors.ResetTokenNotFound()
	}
	if account.ResetTokenExpiry == nil {
		return &model.ResetTokenStatus{Valid: false, Message: "Token has no expiry date"}, nil
	}

	now := s.Now()
	if !account.ResetTokenExpiry.After(now) {
		return &model.ResetTokenStatus{
			Valid:   false,
			Message: "Token has expired",
			Email:   account.Email,
		}, nil
	}

	hours := int64(account.ResetTokenExpiry.Sub(now) / time.Hour)
	return &model.ResetTokenStatus{
		Valid:          true,
		Message:        "Token is valid",
		Email:          account.Email,
		HoursRemaining: &hours,
	}, nil
}

// CompleteReset sets a new password if token is live and consumes it.
// An expired token is cleared as a side effect of the failed attempt.
func (s *PasswordResetService) CompleteReset(ctx context.Context, token, newPassword string) (*model.Account, error) {
	if token == "" {
		return nil, apperrors.MissingRequired("token")
	}
	if !util.IsValidPassword(newPassword) {
		return nil, apperrors.InvalidInput("newPassword", "must be 6 to 72 bytes long")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "Failed to hash password", err)
	}

	now := s.Now()
	account, err := s.accounts.ConsumeResetToken(ctx, token, hash, now)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if account != nil {
		log.Info().Str("account_id", account.ID).Msg("password reset completed")
		return account, nil
	}

	return nil, s.rejectReset(ctx, token, now)
}

// rejectReset explains why ConsumeResetToken matched nothing.
func (s *PasswordResetService) rejectReset(ctx context.Context, token string, now time.Time) error {
	account, err := s.accounts.FindByResetToken(ctx, token)
	if err != nil {
		return apperrors.Database(err)
	}
	if account == nil {
		return apperrors.InvalidResetToken()
	}
	if account.ResetTokenExpiry == nil {
		return apperrors.ResetTokenNoExpiry()
	}
	if account.ResetTokenExpiry.After(now) {
		// Replaced by a newer token between the two statements.
		return apperrors.InvalidResetToken()
	}

	if _, err := s.accounts.ClearExpiredResetToken(ctx, token, now); err != nil {
		return apperrors.Database(err)
	}
	log.Info().
		Str("account_id", account.ID).
		Str("token", util.Fingerprint(token)).
		Msg("expired password reset token cleared")
	return apperrors.ResetTokenExpired()
}

// CleanupExpiredTokens clears every token expired at the current time.
func (s *PasswordResetService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.accounts.ClearExpiredResetTokens(ctx, s.Now())
	if err != nil {
		return 0, apperrors.Database(err)
	}
	return n, nil
}
