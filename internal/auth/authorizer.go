package auth

import (
	"context"

	"github.com/rs/zerolog/log"

	apperrors "github.com/contactdir/contact-server-go/internal/errors"
	"github.com/contactdir/contact-server-go/internal/model"
)

// Action is an operation on an owned resource.
type Action string

const (
	ActionView   Action = "view"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Deny reasons returned to the caller for each action.
const (
	DenyView   = "Access denied"
	DenyUpdate = "You do not have permission to update this contact"
	DenyDelete = "Unauthorized delete attempt"
)

// DenyReason returns the message used when action is refused.
func DenyReason(action Action) string {
	switch action {
	case ActionUpdate:
		return DenyUpdate
	case ActionDelete:
		return DenyDelete
	default:
		return DenyView
	}
}

// AccountFinder resolves the account behind an identity.
type AccountFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
}

type Authorizer struct {
	accounts AccountFinder
}

func NewAuthorizer(accounts AccountFinder) *Authorizer {
	return &Authorizer{accounts: accounts}
}

// Principal resolves the account of the request identity.
func (a *Authorizer) Principal(ctx context.Context) (*model.Account, error) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return nil, apperrors.Unauthenticated()
	}
	account, err := a.accounts.FindByEmail(ctx, id.Email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if account == nil {
		return nil, apperrors.PrincipalNotFound()
	}
	return account, nil
}

// Authorize applies CheckOwnership for a principal resolved with Principal
// and logs denials.
func (a *Authorizer) Authorize(principal *model.Account, action Action, contact *model.Contact) error {
	if err := CheckOwnership(principal, action, contact); err != nil {
		var accountID, contactID string
		if principal != nil {
			accountID = principal.ID
		}
		if contact != nil {
			contactID = contact.ID
		}
		log.Warn().
			Str("account_id", accountID).
			Str("contact_id", contactID).
			Str("action", string(action)).
			Msg("ownership check denied")
		return err
	}
	return nil
}

// CheckOwnership is the pure ownership rule.
func CheckOwnership(principal *model.Account, action Action, contact *model.Contact) error {
	if principal == nil || contact == nil || contact.OwnerID != principal.ID {
		return apperrors.OwnershipViolation(string(action), DenyReason(action))
	}
	return nil
}
