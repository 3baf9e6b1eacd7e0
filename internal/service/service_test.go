package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/contactdir/contact-server-go/internal/auth"
	"github.com/contactdir/contact-server-go/internal/repository/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendPasswordReset(ctx context.Context, toEmail, resetLink string, expiresAt time.Time) error {
	args := m.Called(ctx, toEmail, resetLink, expiresAt)
	return args.Error(0)
}

type fixture struct {
	accounts *memory.AccountRepository
	contacts *memory.ContactRepository
	hasher   auth.PasswordHasher
	tokens   *auth.TokenIssuer
	auth     *AuthService
	reset    *PasswordResetService
	contact  *ContactService
	notifier *mockNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	accounts := memory.NewAccountRepository()
	contacts := memory.NewContactRepository()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	tokens, err := auth.NewTokenIssuer(testSecret, 24*time.Hour)
	require.NoError(t, err)
	authorizer := auth.NewAuthorizer(accounts)
	notifier := new(mockNotifier)

	return &fixture{
		accounts: accounts,
		contacts: contacts,
		hasher:   hasher,
		tokens:   tokens,
		auth:     NewAuthService(accounts, hasher, tokens, authorizer),
		reset:    NewPasswordResetService(accounts, hasher, notifier, 24*time.Hour, "http://localhost:3000/"),
		contact:  NewContactService(contacts, authorizer),
		notifier: notifier,
	}
}

func (f *fixture) register(t *testing.T, email, password string) context.Context {
	t.Helper()
	_, err := f.auth.Register(context.Background(), RegisterInput{Email: email, Password: password})
	require.NoError(t, err)
	return auth.WithIdentity(context.Background(), auth.Identity{Email: email})
}
