package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/contactdir/contact-server-go/internal/config"
	"github.com/contactdir/contact-server-go/internal/middleware"
)

// RouterDeps carries everything the HTTP surface is built from.
type RouterDeps struct {
	Auth            *AuthHandler
	User            *UserHandler
	Contact         *ContactHandler
	Health          http.Handler
	Authenticator   *middleware.Authenticator
	AuthRateLimit   func(http.Handler) http.Handler
	SecurityHeaders *middleware.SecurityHeadersMiddleware
	BodyLimit       *middleware.BodyLimitMiddleware
}

func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(deps.SecurityHeaders.Handler)
	r.Use(deps.BodyLimit.Handler)

	r.Method(http.MethodGet, "/health", deps.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.Authenticator.Handler)

		r.Group(func(r chi.Router) {
			if deps.AuthRateLimit != nil {
				r.Use(deps.AuthRateLimit)
			}
			r.Mount("/auth", deps.Auth.Routes())
		})
		r.Mount("/user", deps.User.Routes())
		r.Mount("/contacts", deps.Contact.Routes())
	})

	return r
}
