package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellhq/inkwell/pkg/auth"
	"github.com/inkwellhq/inkwell/pkg/logger"
	"github.com/inkwellhq/inkwell/pkg/sanitizer"
	"github.com/inkwellhq/inkwell/pkg/validator"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	acct, err := s.password.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := s.issuer.Issue(acct)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		User:  toAccountResponse(acct),
		Token: token,
	})
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	acct, err := s.password.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := s.issuer.Issue(acct)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		User:  toAccountResponse(acct),
		Token: token,
	})
}

// handleForgotPassword answers 200 whether or not the email belongs to an
// account, so the endpoint cannot be used to enumerate registered addresses.
func (s *Service) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	email := sanitizer.NormalizeEmail(req.Email)
	if err := validator.Apply(validator.ValidEmail("email", email)); err != nil {
		s.respondError(w, r, err)
		return
	}

	reset, err := s.password.ForgotPassword(r.Context(), email)
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			s.logger.Info("password reset requested for unknown email",
				logger.Component("auth_http"),
			)
			writeJSON(w, http.StatusOK, map[string]string{
				"message": "if the email is registered, a reset link has been sent",
			})
			return
		}
		s.respondError(w, r, err)
		return
	}

	s.sendResetEmail(reset)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "if the email is registered, a reset link has been sent",
	})
}

func (s *Service) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	acct, err := s.password.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := s.issuer.Issue(acct)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		User:  toAccountResponse(acct),
		Token: token,
	})
}

func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	acct, ok := auth.AccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized", nil)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(acct))
}
