package auth

import (
	"time"

	"github.com/google/uuid"
)

// Identity provider identifiers recorded on an account at creation.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// Account represents a user account in the authentication system.
//
// PasswordHash and GoogleID are both optional: a local signup has only a
// password hash, a federated signup has only a provider id, and a local
// account that later adopts federated login carries both.
type Account struct {
	ID               uuid.UUID
	Name             string
	Email            string // always stored normalized
	PasswordHash     []byte // empty for federated-only accounts
	GoogleID         string // empty unless a Google identity is linked
	AuthProvider     string
	Avatar           string
	IsAdmin          bool
	ResetTokenHash   string    // sha256 of the outstanding reset token, if any
	ResetTokenExpiry time.Time // zero when no reset token is outstanding
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasPassword reports whether the account can authenticate locally.
func (a *Account) HasPassword() bool {
	return len(a.PasswordHash) > 0
}

// validate checks record invariants. It is called at every mutation site
// before the account is persisted.
func (a *Account) validate() error {
	if a.ID == uuid.Nil {
		return ErrInvalidAccount
	}
	if a.Email == "" {
		return ErrInvalidAccount
	}
	// An account must be reachable through at least one credential path.
	if !a.HasPassword() && a.GoogleID == "" {
		return ErrInvalidAccount
	}
	// Reset token fields are set and cleared together.
	if (a.ResetTokenHash == "") != a.ResetTokenExpiry.IsZero() {
		return ErrInvalidAccount
	}
	return nil
}

// clearResetToken voids any outstanding reset token.
func (a *Account) clearResetToken() {
	a.ResetTokenHash = ""
	a.ResetTokenExpiry = time.Time{}
}
