package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/contactdir/contact-server-go/internal/auth"
	apperrors "github.com/contactdir/contact-server-go/internal/errors"
	"github.com/contactdir/contact-server-go/internal/httputil"
	"github.com/contactdir/contact-server-go/internal/middleware"
	"github.com/contactdir/contact-server-go/internal/repository/memory"
	"github.com/contactdir/contact-server-go/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error {
	return errors.New("connection refused")
}

type captureNotifier struct {
	mu    sync.Mutex
	links map[string]string
}

func (n *captureNotifier) SendPasswordReset(_ context.Context, toEmail, resetLink string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.links[toEmail] = resetLink
	return nil
}

func (n *captureNotifier) token(t *testing.T, email string) string {
	t.Helper()
	n.mu.Lock()
	link := n.links[email]
	n.mu.Unlock()
	require.NotEmpty(t, link, "no reset link sent to %s", email)

	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

type testAPI struct {
	router   http.Handler
	notifier *captureNotifier
	reset    *service.PasswordResetService
}

type apiOptions struct {
	revealOutcome bool
	limiter       middleware.Limiter
	limit         int
}

func newTestAPI(t *testing.T, opts apiOptions) *testAPI {
	t.Helper()

	accounts := memory.NewAccountRepository()
	contacts := memory.NewContactRepository()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	tokens, err := auth.NewTokenIssuer(testSecret, 24*time.Hour)
	require.NoError(t, err)
	notifier := &captureNotifier{links: map[string]string{}}

	authorizer := auth.NewAuthorizer(accounts)
	authService := service.NewAuthService(accounts, hasher, tokens, authorizer)
	resetService := service.NewPasswordResetService(accounts, hasher, notifier, 24*time.Hour, "http://localhost:3000")
	contactService := service.NewContactService(contacts, authorizer)

	deps := RouterDeps{
		Auth:            NewAuthHandler(authService),
		User:            NewUserHandler(authService, resetService, opts.revealOutcome, nil),
		Contact:         NewContactHandler(contactService),
		Health:          NewHealthHandler(nil),
		Authenticator:   middleware.NewAuthenticator(tokens),
		SecurityHeaders: middleware.NewSecurityHeadersMiddleware(false),
		BodyLimit:       middleware.NewBodyLimitMiddleware(0),
	}
	if opts.limiter != nil {
		deps.AuthRateLimit = middleware.NewRateLimitMiddleware(opts.limiter, opts.limit, time.Minute, "auth").Handler
	}

	return &testAPI{router: NewRouter(deps), notifier: notifier, reset: resetService}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// signup registers email and returns a session token for it.
func (a *testAPI) signup(t *testing.T, email, password string) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec.Body.String()
}

func (a *testAPI) createContact(t *testing.T, token string, body map[string]any) map[string]any {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/contacts", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody(t, rec)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorCode {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Code
}
