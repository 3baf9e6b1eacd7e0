package service

import (
	"context"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/contactdir/contact-server-go/internal/auth"
	"github.com/contactdir/contact-server-go/internal/config"
	apperrors "github.com/contactdir/contact-server-go/internal/errors"
	"github.com/contactdir/contact-server-go/internal/model"
	"github.com/contactdir/contact-server-go/internal/repository"
)

// ContactService exposes the principal's own contacts. Every access by id
// goes through the Authorizer.
type ContactService struct {
	contacts   repository.ContactRepository
	authorizer *auth.Authorizer
}

func NewContactService(contacts repository.ContactRepository, authorizer *auth.Authorizer) *ContactService {
	return &ContactService{contacts: contacts, authorizer: authorizer}
}

func (s *ContactService) List(ctx context.Context, page, size int) (*model.ContactPage, error) {
	principal, err := s.authorizer.Principal(ctx)
	if err != nil {
		return nil, err
	}
	if page < 0 {
		return nil, apperrors.InvalidInput("page", "must not be negative")
	}
	if size < 1 || size > config.MaxPageSize {
		return nil, apperrors.InvalidInput("size", "must be between 1 and 100")
	}
	if page > math.MaxInt32/size {
		return nil, apperrors.InvalidInput("page", "is too large")
	}

	contacts, err := s.contacts.FindByOwner(ctx, principal.ID, size, page*size)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	total, err := s.contacts.CountByOwner(ctx, principal.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return &model.ContactPage{Contacts: contacts, Page: page, Size: size, Total: total}, nil
}

func (s *ContactService) Search(ctx context.Context, query string) ([]model.Contact, error) {
	principal, err := s.authorizer.Principal(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.MissingRequired("query")
	}

	contacts, err := s.contacts.SearchByOwner(ctx, principal.ID, query)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return contacts, nil
}

// Create always owns the new contact by the principal.
func (s *ContactService) Create(ctx context.Context, fields model.ContactFields) (*model.Contact, error) {
	principal, err := s.authorizer.Principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateContactFields(fields); err != nil {
		return nil, err
	}

	contact, err := s.contacts.Create(ctx, model.CreateContactParams{
		OwnerID:       principal.ID,
		ContactFields: fields,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	log.Debug().Str("account_id", principal.ID).Str("contact_id", contact.ID).Msg("contact created")
	return contact, nil
}

func (s *ContactService) Get(ctx context.Context, id string) (*model.Contact, error) {
	return s.load(ctx, auth.ActionView, id)
}

func (s *ContactService) Update(ctx context.Context, id string, fields model.ContactFields) (*model.Contact, error) {
	if _, err := s.load(ctx, auth.ActionUpdate, id); err != nil {
		return nil, err
	}
	if err := validateContactFields(fields); err != nil {
		return nil, err
	}

	contact, err := s.contacts.Update(ctx, id, model.UpdateContactParams{ContactFields: fields})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if contact == nil {
		return nil, apperrors.NotFound("Contact")
	}
	return contact, nil
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, auth.ActionDelete, id); err != nil {
		return err
	}
	if err := s.contacts.Delete(ctx, id); err != nil {
		return apperrors.Database(err)
	}
	return nil
}

// load fetches a contact and authorizes action on it. The principal is
// resolved before the lookup, so identity failures win over NOT_FOUND.
func (s *ContactService) load(ctx context.Context, action auth.Action, id string) (*model.Contact, error) {
	principal, err := s.authorizer.Principal(ctx)
	if err != nil {
		return nil, err
	}
	contact, err := s.contacts.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if contact == nil {
		return nil, apperrors.NotFound("Contact")
	}
	if err := s.authorizer.Authorize(principal, action, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func validateContactFields(fields model.ContactFields) error {
	if strings.TrimSpace(fields.FirstName) == "" {
		return apperrors.MissingRequired("firstName")
	}
	if strings.TrimSpace(fields.LastName) == "" {
		return apperrors.MissingRequired("lastName")
	}
	return nil
}
