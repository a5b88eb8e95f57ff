package auth

import (
	"net/http"

	"github.com/inkwellhq/inkwell/pkg/auth"
	"github.com/inkwellhq/inkwell/pkg/jwt"
	"github.com/inkwellhq/inkwell/pkg/logger"
)

// RequireAuth is the access guard: it admits a request only if it carries a
// valid bearer credential resolving to an existing account, which is then
// attached to the request context.
//
// A missing header, a malformed or expired token, and a token referencing a
// deleted account all produce the same 401; the distinction stays in logs.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := jwt.BearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not authorized", nil)
			return
		}

		accountID, err := s.issuer.Verify(tokenString)
		if err != nil {
			s.logger.Debug("rejected bearer credential",
				logger.Error(err),
				logger.Component("access_guard"),
			)
			writeError(w, http.StatusUnauthorized, "not authorized", nil)
			return
		}

		acct, err := s.storage.ByID(r.Context(), accountID)
		if err != nil {
			s.logger.Debug("bearer credential references unknown account",
				logger.AccountID(accountID.String()),
				logger.Component("access_guard"),
			)
			writeError(w, http.StatusUnauthorized, "not authorized", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithAccount(r.Context(), acct)))
	})
}

// RequireAdmin is the stricter guard variant: the resolved account must
// carry the admin role. It must be mounted after RequireAuth.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct, ok := auth.AccountFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authorized", nil)
			return
		}
		if !acct.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
