package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactdir/contact-server-go/internal/auth"
	apperrors "github.com/contactdir/contact-server-go/internal/errors"
	"github.com/contactdir/contact-server-go/internal/model"
)

func TestContactService_OwnershipIsolation(t *testing.T) {
	f := newFixture(t)
	aliceCtx := f.register(t, "alice@example.com", "secret1")
	bobCtx := f.register(t, "bob@example.com", "secret1")

	contact, err := f.contact.Create(aliceCtx, model.ContactFields{FirstName: "Grace", LastName: "Hopper"})
	require.NoError(t, err)

	alice, err := f.accounts.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, contact.OwnerID)

	t.Run("owner can read", func(t *testing.T) {
		got, err := f.contact.Get(aliceCtx, contact.ID)
		require.NoError(t, err)
		assert.Equal(t, "Grace", got.FirstName)
	})

	t.Run("other account is denied per action", func(t *testing.T) {
		_, err := f.contact.Get(bobCtx, contact.ID)
		assertDenied(t, err, auth.DenyView)

		_, err = f.contact.Update(bobCtx, contact.ID, model.ContactFields{FirstName: "X", LastName: "Y"})
		assertDenied(t, err, auth.DenyUpdate)

		err = f.contact.Delete(bobCtx, contact.ID)
		assertDenied(t, err, auth.DenyDelete)

		got, err := f.contact.Get(aliceCtx, contact.ID)
		require.NoError(t, err)
		assert.Equal(t, "Grace", got.FirstName)
	})

	t.Run("other account does not see it in listings", func(t *testing.T) {
		page, err := f.contact.List(bobCtx, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Contacts)
		assert.Equal(t, 0, page.Total)

		found, err := f.contact.Search(bobCtx, "grace")
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		_, err := f.contact.Get(context.Background(), contact.ID)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthenticated))

		_, err = f.contact.List(context.Background(), 0, 10)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthenticated))
	})

	t.Run("owner can update and delete", func(t *testing.T) {
		title := "Rear Admiral"
		updated, err := f.contact.Update(aliceCtx, contact.ID, model.ContactFields{FirstName: "Grace", LastName: "Hopper", Title: &title})
		require.NoError(t, err)
		assert.Equal(t, &title, updated.Title)
		assert.Equal(t, alice.ID, updated.OwnerID)

		require.NoError(t, f.contact.Delete(aliceCtx, contact.ID))
		_, err = f.contact.Get(aliceCtx, contact.ID)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	})
}

func TestContactService_Validation(t *testing.T) {
	f := newFixture(t)
	aliceCtx := f.register(t, "alice@example.com", "secret1")

	_, err := f.contact.Create(aliceCtx, model.ContactFields{LastName: "Hopper"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMissingRequired))

	_, err = f.contact.Create(aliceCtx, model.ContactFields{FirstName: "Grace", LastName: "  "})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMissingRequired))

	_, err = f.contact.Search(aliceCtx, " ")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMissingRequired))

	_, err = f.contact.List(aliceCtx, -1, 10)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))

	_, err = f.contact.List(aliceCtx, 0, 101)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
}

func TestContactService_List(t *testing.T) {
	f := newFixture(t)
	aliceCtx := f.register(t, "alice@example.com", "secret1")

	for i := 0; i < 12; i++ {
		_, err := f.contact.Create(aliceCtx, model.ContactFields{FirstName: fmt.Sprintf("F%02d", i), LastName: "L"})
		require.NoError(t, err)
	}

	page, err := f.contact.List(aliceCtx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, page.Contacts, 10)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, "F11", page.Contacts[0].FirstName)

	page, err = f.contact.List(aliceCtx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Contacts, 2)

	t.Run("rejects a page whose offset would overflow", func(t *testing.T) {
		_, err := f.contact.List(aliceCtx, math.MaxInt64/100+1, 100)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput), "got %v", err)

		_, err = f.contact.List(aliceCtx, math.MaxInt32, 10)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput), "got %v", err)
	})
}

func TestContactService_IdentityBeforeLookup(t *testing.T) {
	f := newFixture(t)
	ghostCtx := auth.WithIdentity(context.Background(), auth.Identity{Email: "ghost@example.com"})

	_, err := f.contact.Get(ghostCtx, "00000000-0000-0000-0000-000000000000")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodePrincipalNotFound), "got %v", err)

	err = f.contact.Delete(ghostCtx, "00000000-0000-0000-0000-000000000000")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodePrincipalNotFound), "got %v", err)
}

func assertDenied(t *testing.T, err error, reason string) {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, apperrors.ErrCodeOwnershipViolation, appErr.Code)
	assert.Equal(t, reason, appErr.Message)
}
