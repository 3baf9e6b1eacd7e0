// Package memory provides in-process implementations of the repository
// interfaces with the same semantics as the Postgres ones.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/contactdir/contact-server-go/internal/model"
	"github.com/contactdir/contact-server-go/internal/repository"
)

var (
	_ repository.AccountRepository = (*AccountRepository)(nil)
	_ repository.ContactRepository = (*ContactRepository)(nil)
)

type AccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
	now      func() time.Time
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*model.Account),
		now:      time.Now,
	}
}

// Put stores a copy of account as-is, bypassing every invariant. Tests use it
// to seed states the public API cannot produce.
func (r *AccountRepository) Put(account model.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	r.accounts[account.ID] = &account
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return copyAccount(a), nil
		}
	}
	return nil, nil
}

func (r *AccountRepository) FindByResetToken(_ context.Context, token string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyAccount(r.byResetToken(token)), nil
}

func (r *AccountRepository) Create(_ context.Context, params model.CreateAccountParams) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == params.Email {
			return nil, repository.ErrDuplicateEmail
		}
	}
	now := r.now()
	account := &model.Account{
		ID:           uuid.NewString(),
		Email:        params.Email,
		Phone:        params.Phone,
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.accounts[account.ID] = account
	return copyAccount(account), nil
}

func (r *AccountRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.PasswordHash = passwordHash
		a.UpdatedAt = r.now()
	}
	return nil
}

func (r *AccountRepository) SetResetToken(_ context.Context, id, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.ResetToken = &token
		a.ResetTokenExpiry = &expiresAt
		a.UpdatedAt = r.now()
	}
	return nil
}

func (r *AccountRepository) ConsumeResetToken(_ context.Context, token, passwordHash string, now time.Time) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.byResetToken(token)
	if a == nil || a.ResetTokenExpiry == nil || !a.ResetTokenExpiry.After(now) {
		return nil, nil
	}
	a.PasswordHash = passwordHash
	a.ResetToken = nil
	a.ResetTokenExpiry = nil
	a.UpdatedAt = now
	return copyAccount(a), nil
}

func (r *AccountRepository) ClearExpiredResetToken(_ context.Context, token string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.byResetToken(token)
	if a == nil || a.ResetTokenExpiry == nil || a.ResetTokenExpiry.After(now) {
		return false, nil
	}
	a.ResetToken = nil
	a.ResetTokenExpiry = nil
	a.UpdatedAt = now
	return true, nil
}

func (r *AccountRepository) ClearExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.accounts {
		if a.ResetToken == nil || a.ResetTokenExpiry == nil || a.ResetTokenExpiry.After(now) {
			continue
		}
		a.ResetToken = nil
		a.ResetTokenExpiry = nil
		a.UpdatedAt = now
		n++
	}
	return n, nil
}

func (r *AccountRepository) byResetToken(token string) *model.Account {
	for _, a := range r.accounts {
		if a.ResetToken != nil && *a.ResetToken == token {
			return a
		}
	}
	return nil
}

func copyAccount(a *model.Account) *model.Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.ResetToken != nil {
		token := *a.ResetToken
		c.ResetToken = &token
	}
	if a.ResetTokenExpiry != nil {
		expiry := *a.ResetTokenExpiry
		c.ResetTokenExpiry = &expiry
	}
	return &c
}

type ContactRepository struct {
	mu       sync.Mutex
	contacts map[string]*model.Contact
	seq      int64
}

func NewContactRepository() *ContactRepository {
	return &ContactRepository{contacts: make(map[string]*model.Contact)}
}

func (r *ContactRepository) FindByID(_ context.Context, id string) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.contacts[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *ContactRepository) FindByOwner(_ context.Context, ownerID string, limit, offset int) ([]model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owned := r.owned(ownerID, func(model.Contact) bool { return true })
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	if offset < 0 || limit <= 0 || offset >= len(owned) {
		return []model.Contact{}, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], nil
}

func (r *ContactRepository) CountByOwner(_ context.Context, ownerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owned(ownerID, func(model.Contact) bool { return true })), nil
}

func (r *ContactRepository) SearchByOwner(_ context.Context, ownerID, query string) ([]model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(query)
	matches := r.owned(ownerID, func(c model.Contact) bool {
		return strings.Contains(strings.ToLower(c.FirstName), q) ||
			strings.Contains(strings.ToLower(c.LastName), q)
	})
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].LastName != matches[j].LastName {
			return matches[i].LastName < matches[j].LastName
		}
		return matches[i].FirstName < matches[j].FirstName
	})
	return matches, nil
}

func (r *ContactRepository) Create(_ context.Context, params model.CreateContactParams) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// A monotonically increasing timestamp keeps listing order stable.
	r.seq++
	now := time.Unix(0, 0).Add(time.Duration(r.seq) * time.Millisecond)
	c := &model.Contact{
		ID:        uuid.NewString(),
		OwnerID:   params.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyFields(c, params.ContactFields)
	r.contacts[c.ID] = c
	cp := *c
	return &cp, nil
}

func (r *ContactRepository) Update(_ context.Context, id string, params model.UpdateContactParams) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok {
		return nil, nil
	}
	applyFields(c, params.ContactFields)
	c.UpdatedAt = time.Now()
	cp := *c
	return &cp, nil
}

func (r *ContactRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.contacts, id)
	return nil
}

func (r *ContactRepository) owned(ownerID string, keep func(model.Contact) bool) []model.Contact {
	out := []model.Contact{}
	for _, c := range r.contacts {
		if c.OwnerID == ownerID && keep(*c) {
			out = append(out, *c)
		}
	}
	return out
}

func applyFields(c *model.Contact, f model.ContactFields) {
	c.FirstName = f.FirstName
	c.LastName = f.LastName
	c.Title = f.Title
	c.EmailWork = f.EmailWork
	c.EmailPersonal = f.EmailPersonal
	c.PhoneWork = f.PhoneWork
	c.PhoneHome = f.PhoneHome
	c.PhonePersonal = f.PhonePersonal
}
