package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inkwellhq/inkwell/pkg/auth"
	"github.com/inkwellhq/inkwell/pkg/logger"
	"github.com/inkwellhq/inkwell/pkg/validator"
)

// accountResponse is the public JSON shape of an account. Password and
// reset-token material never leave the service.
type accountResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Avatar       string `json:"avatar,omitempty"`
	AuthProvider string `json:"authProvider"`
	IsAdmin      bool   `json:"isAdmin"`
}

func toAccountResponse(acct *auth.Account) accountResponse {
	return accountResponse{
		ID:           acct.ID.String(),
		Name:         acct.Name,
		Email:        acct.Email,
		Avatar:       acct.Avatar,
		AuthProvider: acct.AuthProvider,
		IsAdmin:      acct.IsAdmin,
	}
}

type authResponse struct {
	User  accountResponse `json:"user"`
	Token string          `json:"token"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Message string       `json:"message"`
	Errors  []fieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, fields []fieldError) {
	writeJSON(w, status, errorResponse{Message: message, Errors: fields})
}

// respondError maps domain errors onto HTTP responses. Unrecognized errors
// become an opaque 500; the detail stays in logs.
func (s *Service) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]fieldError, 0, len(verrs))
		for _, ve := range verrs {
			fields = append(fields, fieldError{Field: ve.Field, Message: ve.Message})
		}
		writeError(w, http.StatusBadRequest, "validation failed", fields)
		return
	}

	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "email already registered", nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, auth.ErrInvalidOrExpiredToken):
		writeError(w, http.StatusBadRequest, "invalid or expired reset token", nil)
	default:
		s.logger.Error("request failed",
			logger.Error(err),
			logger.Handler(r.URL.Path),
			logger.Component("auth_http"),
		)
		writeError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
