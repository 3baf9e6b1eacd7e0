package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/contactdir/contact-server-go/internal/auth"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func identityRecorder(got *auth.Identity, present *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *present = auth.IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticator(t *testing.T) {
	t.Run("attaches identity for a valid token", func(t *testing.T) {
		verifier := new(mockVerifier)
		verifier.On("Verify", "good-token").Return("alice@example.com", nil)

		var id auth.Identity
		var ok bool
		handler := NewAuthenticator(verifier).Handler(identityRecorder(&id, &ok))

		req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, ok)
		assert.Equal(t, "alice@example.com", id.Email)
		verifier.AssertExpectations(t)
	})

	t.Run("invalid token leaves request anonymous", func(t *testing.T) {
		verifier := new(mockVerifier)
		verifier.On("Verify", "bad-token").Return("", errors.New("invalid"))

		var id auth.Identity
		var ok bool
		handler := NewAuthenticator(verifier).Handler(identityRecorder(&id, &ok))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, ok)
	})

	t.Run("ignores missing and non-bearer headers", func(t *testing.T) {
		for _, header := range []string{"", "Basic abc", "bearer token", "Bearer ", "Token abc"} {
			verifier := new(mockVerifier)

			var id auth.Identity
			var ok bool
			handler := NewAuthenticator(verifier).Handler(identityRecorder(&id, &ok))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code, header)
			assert.False(t, ok, header)
			verifier.AssertNotCalled(t, "Verify", mock.Anything)
		}
	})

	t.Run("query token is not accepted", func(t *testing.T) {
		verifier := new(mockVerifier)

		var id auth.Identity
		var ok bool
		handler := NewAuthenticator(verifier).Handler(identityRecorder(&id, &ok))

		req := httptest.NewRequest(http.MethodGet, "/?token=good-token", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.False(t, ok)
		verifier.AssertNotCalled(t, "Verify", mock.Anything)
	})
}

func TestAuthenticator_WithRealIssuer(t *testing.T) {
	issuer, err := auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)
	token, err := issuer.Issue("bob@example.com")
	require.NoError(t, err)

	var id auth.Identity
	var ok bool
	handler := NewAuthenticator(issuer).Handler(identityRecorder(&id, &ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, ok)
	assert.Equal(t, "bob@example.com", id.Email)
}
