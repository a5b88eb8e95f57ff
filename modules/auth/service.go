// Package auth exposes the authentication flows over HTTP: local
// registration and login, password recovery, Google sign-in, and the
// bearer-credential access guard consumed by protected routes.
package auth

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellhq/inkwell/pkg/auth"
	"github.com/inkwellhq/inkwell/pkg/email"
)

// Config holds module-level settings.
type Config struct {
	// ClientURL is the base URL of the browser client, used for OAuth
	// redirects and reset-password links.
	ClientURL string `env:"CLIENT_URL,required"`
}

// Options wires the service's collaborators. Google and RateLimit are
// optional; everything else is required.
type Options struct {
	Password  auth.PasswordAuthenticator
	Google    *auth.GoogleService
	Issuer    *auth.TokenIssuer
	Storage   auth.Storage
	Mailer    email.EmailSender
	Logger    *slog.Logger
	ClientURL string
	RateLimit func(http.Handler) http.Handler
}

// Service is the HTTP surface of the authentication subsystem.
type Service struct {
	password  auth.PasswordAuthenticator
	google    *auth.GoogleService
	issuer    *auth.TokenIssuer
	storage   auth.Storage
	mailer    email.EmailSender
	logger    *slog.Logger
	clientURL string
	rateLimit func(http.Handler) http.Handler
}

// NewService creates the auth HTTP service.
func NewService(opts Options) *Service {
	s := &Service{
		password:  opts.Password,
		google:    opts.Google,
		issuer:    opts.Issuer,
		storage:   opts.Storage,
		mailer:    opts.Mailer,
		logger:    opts.Logger,
		clientURL: opts.ClientURL,
		rateLimit: opts.RateLimit,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Router returns the routes served under the auth mount point.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()

	if s.rateLimit != nil {
		r.Use(s.rateLimit)
	}

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Post("/forgotpassword", s.handleForgotPassword)
	r.Put("/resetpassword/{token}", s.handleResetPassword)

	if s.google != nil {
		r.Get("/google", s.handleGoogle)
		r.Get("/google/callback", s.handleGoogleCallback)
	}

	r.Group(func(protected chi.Router) {
		protected.Use(s.RequireAuth)
		protected.Get("/me", s.handleMe)
	})

	return r
}
