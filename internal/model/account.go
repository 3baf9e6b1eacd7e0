package model

import (
	"time"
)

type Account struct {
	ID               string     `db:"id" json:"id"`
	Email            string     `db:"email" json:"email"`
	Phone            *string    `db:"phone" json:"phone,omitempty"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	ResetToken       *string    `db:"reset_token" json:"-"`
	ResetTokenExpiry *time.Time `db:"reset_token_expiry" json:"-"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
}

// HasPendingReset reports whether a reset token is currently stored,
// regardless of whether it has expired.
func (a *Account) HasPendingReset() bool {
	return a.ResetToken != nil
}

type CreateAccountParams struct {
	Email        string
	Phone        *string
	PasswordHash string
}

// ResetTokenStatus is the read-only view of a pending reset token.
type ResetTokenStatus struct {
	Valid          bool   `json:"valid"`
	Message        string `json:"message"`
	Email          string `json:"email,omitempty"`
	HoursRemaining *int64 `json:"hoursRemaining,omitempty"`
}
