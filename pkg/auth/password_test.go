package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwellhq/inkwell/pkg/auth"
	"github.com/inkwellhq/inkwell/pkg/userstore"
	"github.com/inkwellhq/inkwell/pkg/validator"
)

func newPasswordService(opts ...auth.PasswordOption) (auth.PasswordAuthenticator, *userstore.MemoryStore) {
	store := userstore.NewMemoryStore()
	opts = append([]auth.PasswordOption{auth.WithBcryptCost(bcrypt.MinCost)}, opts...)
	return auth.NewPasswordService(store, opts...), store
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates local account", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPasswordService()

		acct, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "Sup3rSecret")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, acct.ID)
		assert.Equal(t, "Jane Doe", acct.Name)
		assert.Equal(t, "jane@example.com", acct.Email)
		assert.Equal(t, auth.ProviderLocal, acct.AuthProvider)
		assert.True(t, acct.HasPassword())
		assert.NotEqual(t, []byte("Sup3rSecret"), acct.PasswordHash)
		assert.False(t, acct.IsAdmin)
	})

	t.Run("normalizes email and name", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPasswordService()

		acct, err := svc.Register(ctx, "  Jane   Doe ", " Jane@Example.COM ", "Sup3rSecret")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", acct.Name)
		assert.Equal(t, "jane@example.com", acct.Email)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPasswordService()

		_, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "Sup3rSecret")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "Other Jane", "jane@example.com", "An0therSecret")
		assert.ErrorIs(t, err, auth.ErrEmailTaken)
	})

	t.Run("duplicate check covers normalized forms", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPasswordService()

		_, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "Sup3rSecret")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "Other Jane", "Jane@Example.com", "An0therSecret")
		assert.ErrorIs(t, err, auth.ErrEmailTaken)
	})

	t.Run("rejects invalid input with field errors", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPasswordService()

		tests := []struct {
			name     string
			fullName string
			email    string
			password string
			field    string
		}{
			{"empty name", "", "jane@example.com", "Sup3rSecret", "name"},
			{"name with digits", "Jane42", "jane@example.com", "Sup3rSecret", "name"},
			{"single char name", "J", "jane@example.com", "Sup3rSecret", "name"},
			{"malformed email", "Jane Doe", "not-an-email", "Sup3rSecret", "email"},
			{"weak password", "Jane Doe", "jane@example.com", "short", "password"},
			{"password without digit", "Jane Doe", "jane@example.com", "NoDigitsHere", "password"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Register(ctx, tt.fullName, tt.email, tt.password)
				require.Error(t, err)

				verrs := validator.ExtractValidationErrors(err)
				require.NotNil(t, verrs)
				assert.True(t, verrs.Has(tt.field))
			})
		}
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns the registered account", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPasswordService()

		created, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "Sup3rSecret")
		require.NoError(t, err)

		acct, err := svc.Authenticate(ctx, "jane@example.com", "Sup3rSecret")
		require.NoError(t, err)
		assert.Equal(t, created.ID, acct.ID)
	})

	t.Run("accepts unnormalized email", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPasswordService()

		_, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "Sup3rSecret")
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, " Jane@Example.COM ", "Sup3rSecret")
		assert.NoError(t, err)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPasswordService()

		_, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "Sup3rSecret")
		require.NoError(t, err)

		_, errWrongPassword := svc.Authenticate(ctx, "jane@example.com", "WrongPass1")
		_, errUnknownEmail := svc.Authenticate(ctx, "nobody@example.com", "WrongPass1")

		assert.ErrorIs(t, errWrongPassword, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknownEmail, auth.ErrInvalidCredentials)
		assert.Equal(t, errWrongPassword, errUnknownEmail)
	})

	t.Run("federated account without password fails closed", func(t *testing.T) {
		t.Parallel()
		svc, store := newPasswordService()

		now := time.Now()
		require.NoError(t, store.Create(ctx, &auth.Account{
			ID:           uuid.New(),
			Name:         "Jane Doe",
			Email:        "jane@example.com",
			GoogleID:     "google-123",
			AuthProvider: auth.ProviderGoogle,
			CreatedAt:    now,
			UpdatedAt:    now,
		}))

		_, err := svc.Authenticate(ctx, "jane@example.com", "")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

		_, err = svc.Authenticate(ctx, "jane@example.com", "AnyPassword1")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestForgotPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issues a token and stores only its hash", func(t *testing.T) {
		t.Parallel()
		svc, store := newPasswordService()

		created, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "Sup3rSecret")
		require.NoError(t, err)

		reset, err := svc.ForgotPassword(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", reset.Email)
		assert.Len(t, reset.Token, 40)
		assert.WithinDuration(t, time.Now().Add(10*time.Minute), reset.ExpiresAt, 5*time.Second)

		stored, err := store.ByID(ctx, created.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ResetTokenHash)
		assert.NotEqual(t, reset.Token, stored.ResetTokenHash)
		assert.False(t, stored.ResetTokenExpiry.IsZero())
	})

	t.Run("unknown email reports not found without side effects", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPasswordService()

		_, err := svc.ForgotPassword(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, auth.ErrAccountNotFound)
	})

	t.Run("a new request replaces the outstanding token", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPasswordService()

		_, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "Sup3rSecret")
		require.NoError(t, err)

		first, err := svc.ForgotPassword(ctx, "jane@example.com")
		require.NoError(t, err)
		second, err := svc.ForgotPassword(ctx, "jane@example.com")
		require.NoError(t, err)
		require.NotEqual(t, first.Token, second.Token)

		_, err = svc.ResetPassword(ctx, first.Token, "N3wPassword")
		assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)

		_, err = svc.ResetPassword(ctx, second.Token, "N3wPassword")
		assert.NoError(t, err)
	})
}

func TestResetPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("replaces the password exactly once", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPasswordService()

		_, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "Sup3rSecret")
		require.NoError(t, err)

		reset, err := svc.ForgotPassword(ctx, "jane@example.com")
		require.NoError(t, err)

		acct, err := svc.ResetPassword(ctx, reset.Token, "N3wPassword")
		require.NoError(t, err)
		assert.Empty(t, acct.ResetTokenHash)
		assert.True(t, acct.ResetTokenExpiry.IsZero())

		_, err = svc.Authenticate(ctx, "jane@example.com", "Sup3rSecret")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		_, err = svc.Authenticate(ctx, "jane@example.com", "N3wPassword")
		assert.NoError(t, err)

		// Token is single-use.
		_, err = svc.ResetPassword(ctx, reset.Token, "An0therPass")
		assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
	})

	t.Run("rejects unknown token", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPasswordService()

		_, err := svc.ResetPassword(ctx, "deadbeef", "N3wPassword")
		assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPasswordService(auth.WithResetTokenTTL(-time.Minute))

		_, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "Sup3rSecret")
		require.NoError(t, err)

		reset, err := svc.ForgotPassword(ctx, "jane@example.com")
		require.NoError(t, err)

		_, err = svc.ResetPassword(ctx, reset.Token, "N3wPassword")
		assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
	})

	t.Run("rejects weak replacement password", func(t *testing.T) {
		t.Parallel()
		svc, _ := newPasswordService()

		_, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "Sup3rSecret")
		require.NoError(t, err)

		reset, err := svc.ForgotPassword(ctx, "jane@example.com")
		require.NoError(t, err)

		_, err = svc.ResetPassword(ctx, reset.Token, "weak")
		require.Error(t, err)
		assert.True(t, validator.IsValidationError(err))

		// A failed attempt does not burn the token.
		_, err = svc.ResetPassword(ctx, reset.Token, "N3wPassword")
		assert.NoError(t, err)
	})

	t.Run("sets a password on a federated account", func(t *testing.T) {
		t.Parallel()
		svc, store := newPasswordService()

		now := time.Now()
		acct := &auth.Account{
			ID:           uuid.New(),
			Name:         "Jane Doe",
			Email:        "jane@example.com",
			GoogleID:     "google-123",
			AuthProvider: auth.ProviderGoogle,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		require.NoError(t, store.Create(ctx, acct))

		reset, err := svc.ForgotPassword(ctx, "jane@example.com")
		require.NoError(t, err)

		updated, err := svc.ResetPassword(ctx, reset.Token, "N3wPassword")
		require.NoError(t, err)
		assert.True(t, updated.HasPassword())
		assert.Equal(t, "google-123", updated.GoogleID)

		_, err = svc.Authenticate(ctx, "jane@example.com", "N3wPassword")
		assert.NoError(t, err)
	})
}
