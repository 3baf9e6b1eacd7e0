package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/contactdir/contact-server-go/internal/auth"
	apperrors "github.com/contactdir/contact-server-go/internal/errors"
	"github.com/contactdir/contact-server-go/internal/model"
	"github.com/contactdir/contact-server-go/internal/repository"
	"github.com/contactdir/contact-server-go/internal/util"
)

type RegisterInput struct {
	Email    string
	Phone    *string
	Password string
}

type AuthService struct {
	accounts   repository.AccountRepository
	hasher     auth.PasswordHasher
	tokens     *auth.TokenIssuer
	authorizer *auth.Authorizer
}

func NewAuthService(
	accounts repository.AccountRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenIssuer,
	authorizer *auth.Authorizer,
) *AuthService {
	return &AuthService{
		accounts:   accounts,
		hasher:     hasher,
		tokens:     tokens,
		authorizer: authorizer,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.Account, error) {
	if in.Email == "" {
		return nil, apperrors.MissingRequired("email")
	}
	if !util.IsValidEmail(in.Email) {
		return nil, apperrors.InvalidInput("email", "must be a valid email address")
	}
	if !util.IsValidPassword(in.Password) {
		return nil, apperrors.InvalidInput("password", "must be 6 to 72 bytes long")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "Failed to hash password", err)
	}

	account, err := s.accounts.Create(ctx, model.CreateAccountParams{
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, apperrors.AlreadyExists("Account")
	}
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().Str("account_id", account.ID).Msg("account registered")
	return account, nil
}

// Login returns a session token. Unknown email and wrong password fail
// identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.Account, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, apperrors.Database(err)
	}
	if account == nil {
		log.Debug().Str("email", util.MaskEmail(email)).Msg("login: unknown account")
		return "", nil, apperrors.AuthenticationFailed()
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		log.Error().Err(err).Str("account_id", account.ID).Msg("login: unusable password hash")
		return "", nil, apperrors.AuthenticationFailed()
	}
	if !ok {
		log.Debug().Str("account_id", account.ID).Msg("login: wrong password")
		return "", nil, apperrors.AuthenticationFailed()
	}

	token, err := s.tokens.Issue(account.Email)
	if err != nil {
		return "", nil, apperrors.Wrap(apperrors.ErrCodeInternal, "Failed to issue token", err)
	}
	return token, account, nil
}

func (s *AuthService) Profile(ctx context.Context) (*model.Account, error) {
	return s.authorizer.Principal(ctx)
}

func (s *AuthService) ChangePassword(ctx context.Context, newPassword string) (*model.Account, error) {
	principal, err := s.authorizer.Principal(ctx)
	if err != nil {
		return nil, err
	}
	if !util.IsValidPassword(newPassword) {
		return nil, apperrors.InvalidInput("newPassword", "must be 6 to 72 bytes long")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "Failed to hash password", err)
	}
	if err := s.accounts.UpdatePassword(ctx, principal.ID, hash); err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().Str("account_id", principal.ID).Msg("password changed")
	return principal, nil
}
