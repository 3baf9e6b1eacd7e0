package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactdir/contact-server-go/internal/model"
	"github.com/contactdir/contact-server-go/internal/repository"
)

func TestAccountRepository_ConsumeResetToken(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	account, err := repo.Create(ctx, model.CreateAccountParams{Email: "a@example.com", PasswordHash: "old"})
	require.NoError(t, err)
	require.NoError(t, repo.SetResetToken(ctx, account.ID, "tok", now.Add(time.Hour)))

	t.Run("boundary counts as expired", func(t *testing.T) {
		consumed, err := repo.ConsumeResetToken(ctx, "tok", "new", now.Add(time.Hour))
		require.NoError(t, err)
		assert.Nil(t, consumed)
	})

	t.Run("single use", func(t *testing.T) {
		consumed, err := repo.ConsumeResetToken(ctx, "tok", "new", now)
		require.NoError(t, err)
		require.NotNil(t, consumed)
		assert.Equal(t, "new", consumed.PasswordHash)

		again, err := repo.ConsumeResetToken(ctx, "tok", "newer", now)
		require.NoError(t, err)
		assert.Nil(t, again)
	})
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, model.CreateAccountParams{Email: "a@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.CreateAccountParams{Email: "a@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestAccountRepository_ReturnsCopies(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	account, err := repo.Create(ctx, model.CreateAccountParams{Email: "a@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	account.PasswordHash = "mutated"

	found, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "h", found.PasswordHash)
}

func TestAccountRepository_ClearExpiredResetTokens(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	expired, live := "expired", "live"

	repo.Put(model.Account{Email: "a@example.com", ResetToken: &expired, ResetTokenExpiry: &past})
	repo.Put(model.Account{Email: "b@example.com", ResetToken: &live, ResetTokenExpiry: &future})
	repo.Put(model.Account{Email: "c@example.com"})

	n, err := repo.ClearExpiredResetTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.ClearExpiredResetTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	found, err := repo.FindByResetToken(ctx, live)
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestContactRepository_FindByOwner(t *testing.T) {
	repo := NewContactRepository()
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := repo.Create(ctx, model.CreateContactParams{
			OwnerID:       "owner",
			ContactFields: model.ContactFields{FirstName: name, LastName: "L"},
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, model.CreateContactParams{
		OwnerID:       "other",
		ContactFields: model.ContactFields{FirstName: "x", LastName: "y"},
	})
	require.NoError(t, err)

	negative, err := repo.FindByOwner(ctx, "owner", 100, -9223372036854775616)
	require.NoError(t, err)
	assert.Empty(t, negative)

	page, err := repo.FindByOwner(ctx, "owner", 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "third", page[0].FirstName)
	assert.Equal(t, "second", page[1].FirstName)

	page, err = repo.FindByOwner(ctx, "owner", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "first", page[0].FirstName)

	page, err = repo.FindByOwner(ctx, "owner", 2, 10)
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestContactRepository_SearchByOwner(t *testing.T) {
	repo := NewContactRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, model.CreateContactParams{
		OwnerID:       "owner",
		ContactFields: model.ContactFields{FirstName: "Grace", LastName: "Hopper"},
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.CreateContactParams{
		OwnerID:       "other",
		ContactFields: model.ContactFields{FirstName: "Grace", LastName: "Kelly"},
	})
	require.NoError(t, err)

	found, err := repo.SearchByOwner(ctx, "owner", "GRA")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Hopper", found[0].LastName)
}
