package auth

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/inkwellhq/inkwell/pkg/auth"
	"github.com/inkwellhq/inkwell/pkg/logger"
)

// handleGoogle starts the OAuth flow by redirecting the browser to the
// provider's consent screen.
func (s *Service) handleGoogle(w http.ResponseWriter, r *http.Request) {
	authURL, err := s.google.AuthURL(r.Context())
	if err != nil {
		s.logger.Error("failed to build google auth url",
			logger.Error(err),
			logger.Component("oauth_http"),
		)
		s.redirectFailure(w, r)
		return
	}
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// handleGoogleCallback completes the flow. All failures, whether reported by
// the provider or hit during the exchange, land on the same client error
// page; the cause stays in logs.
func (s *Service) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		s.logger.Info("google callback returned error",
			logger.Provider(auth.ProviderGoogle),
			logger.Component("oauth_http"),
		)
		s.redirectFailure(w, r)
		return
	}

	acct, err := s.google.Auth(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		s.logger.Error("google authentication failed",
			logger.Error(err),
			logger.Provider(auth.ProviderGoogle),
			logger.Component("oauth_http"),
		)
		s.redirectFailure(w, r)
		return
	}

	token, err := s.issuer.Issue(acct)
	if err != nil {
		s.logger.Error("failed to issue token after google auth",
			logger.Error(err),
			logger.AccountID(acct.ID.String()),
			logger.Component("oauth_http"),
		)
		s.redirectFailure(w, r)
		return
	}

	userJSON, err := json.Marshal(toAccountResponse(acct))
	if err != nil {
		s.redirectFailure(w, r)
		return
	}

	redirect := s.clientURL + "/auth/google/success?" + url.Values{
		"token": {token},
		"user":  {string(userJSON)},
	}.Encode()
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

func (s *Service) redirectFailure(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.clientURL+"/auth?error=google_auth_failed", http.StatusTemporaryRedirect)
}
