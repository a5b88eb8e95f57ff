package auth

import (
	"context"

	"github.com/google/uuid"
)

// Storage defines the persistence operations required by the authentication
// flows. Implementations must enforce email uniqueness (case already folded
// by the callers) and sparse uniqueness of the Google id, and must surface
// a uniqueness violation on Create as ErrEmailTaken: concurrent
// registrations race, and a read-then-write check alone is insufficient.
//
// Lookup methods return ErrAccountNotFound when no account matches.
type Storage interface {
	Create(ctx context.Context, acct *Account) error
	Update(ctx context.Context, acct *Account) error
	ByID(ctx context.Context, id uuid.UUID) (*Account, error)
	ByEmail(ctx context.Context, email string) (*Account, error)
	ByGoogleID(ctx context.Context, googleID string) (*Account, error)
	ByResetTokenHash(ctx context.Context, hash string) (*Account, error)
}
