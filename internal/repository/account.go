package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/contactdir/contact-server-go/internal/model"
)

// ErrDuplicateEmail is returned by Create when the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

const uniqueViolation = "23505"

// AccountRepository is the credential store. Email lookups are exact-match.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByResetToken(ctx context.Context, token string) (*model.Account, error)
	Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// SetResetToken overwrites any pending reset token of the account.
	SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error
	// ConsumeResetToken sets the password hash and clears the token in one
	// conditional write. It returns nil when no account holds an unexpired token.
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*model.Account, error)
	// ClearExpiredResetToken clears token only if it has expired at now.
	ClearExpiredResetToken(ctx context.Context, token string, now time.Time) (bool, error)
	// ClearExpiredResetTokens clears every reset token expired at now.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type accountRepo struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM accounts WHERE email = $1
	`, email)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) FindByResetToken(ctx context.Context, token string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM accounts WHERE reset_token = $1
	`, token)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		INSERT INTO accounts (email, phone, password_hash)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.Email, params.Phone, params.PasswordHash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET password_hash = $2, updated_at = $3 WHERE id = $1
	`, id, passwordHash, time.Now())
	return err
}

func (r *accountRepo) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET
			reset_token = $2,
			reset_token_expiry = $3,
			updated_at = $4
		WHERE id = $1
	`, id, token, expiresAt, time.Now())
	return err
}

func (r *accountRepo) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		UPDATE accounts SET
			password_hash = $2,
			reset_token = NULL,
			reset_token_expiry = NULL,
			updated_at = $3
		WHERE reset_token = $1 AND reset_token_expiry > $3
		RETURNING *
	`, token, passwordHash, now)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) ClearExpiredResetToken(ctx context.Context, token string, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET
			reset_token = NULL,
			reset_token_expiry = NULL,
			updated_at = $2
		WHERE reset_token = $1 AND reset_token_expiry <= $2
	`, token, now)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func (r *accountRepo) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET
			reset_token = NULL,
			reset_token_expiry = NULL,
			updated_at = $1
		WHERE reset_token IS NOT NULL AND reset_token_expiry <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
