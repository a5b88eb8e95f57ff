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
)

func newGoogleService() (*auth.GoogleService, *userstore.MemoryStore) {
	store := userstore.NewMemoryStore()
	svc := auth.NewGoogleService(store, auth.NewMemoryStateStore(), auth.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/api/auth/google/callback",
		StateTTL:     10 * time.Minute,
	})
	return svc, store
}

func googleProfile() auth.Profile {
	return auth.Profile{
		ProviderUserID: "google-123",
		Email:          "jane@example.com",
		EmailVerified:  true,
		Name:           "Jane Doe",
		AvatarURL:      "https://lh3.googleusercontent.com/a/photo",
	}
}

func TestGoogleCallback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates a federated account for a new profile", func(t *testing.T) {
		t.Parallel()
		svc, _ := newGoogleService()

		acct, err := svc.Callback(ctx, googleProfile())
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, acct.ID)
		assert.Equal(t, "google-123", acct.GoogleID)
		assert.Equal(t, auth.ProviderGoogle, acct.AuthProvider)
		assert.Equal(t, "jane@example.com", acct.Email)
		assert.Equal(t, "https://lh3.googleusercontent.com/a/photo", acct.Avatar)
		assert.False(t, acct.HasPassword())
	})

	t.Run("repeat logins are idempotent", func(t *testing.T) {
		t.Parallel()
		svc, _ := newGoogleService()

		first, err := svc.Callback(ctx, googleProfile())
		require.NoError(t, err)

		second, err := svc.Callback(ctx, googleProfile())
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("links to an existing account with the same email", func(t *testing.T) {
		t.Parallel()
		svc, store := newGoogleService()

		hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
		require.NoError(t, err)
		now := time.Now()
		local := &auth.Account{
			ID:           uuid.New(),
			Name:         "Jane Doe",
			Email:        "jane@example.com",
			PasswordHash: hash,
			AuthProvider: auth.ProviderLocal,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		require.NoError(t, store.Create(ctx, local))

		acct, err := svc.Callback(ctx, googleProfile())
		require.NoError(t, err)

		// Same account, now reachable through both credential paths.
		assert.Equal(t, local.ID, acct.ID)
		assert.Equal(t, "google-123", acct.GoogleID)
		assert.Equal(t, auth.ProviderGoogle, acct.AuthProvider)
		assert.True(t, acct.HasPassword())

		stored, err := store.ByGoogleID(ctx, "google-123")
		require.NoError(t, err)
		assert.Equal(t, local.ID, stored.ID)
	})

	t.Run("linking adopts the provider avatar only when unset", func(t *testing.T) {
		t.Parallel()
		svc, store := newGoogleService()

		hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
		require.NoError(t, err)
		now := time.Now()
		require.NoError(t, store.Create(ctx, &auth.Account{
			ID:           uuid.New(),
			Name:         "Jane Doe",
			Email:        "jane@example.com",
			PasswordHash: hash,
			AuthProvider: auth.ProviderLocal,
			Avatar:       "https://cdn.example.com/custom.png",
			CreatedAt:    now,
			UpdatedAt:    now,
		}))

		acct, err := svc.Callback(ctx, googleProfile())
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/custom.png", acct.Avatar)
	})

	t.Run("matches email case-insensitively", func(t *testing.T) {
		t.Parallel()
		svc, store := newGoogleService()

		hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
		require.NoError(t, err)
		now := time.Now()
		local := &auth.Account{
			ID:           uuid.New(),
			Name:         "Jane Doe",
			Email:        "jane@example.com",
			PasswordHash: hash,
			AuthProvider: auth.ProviderLocal,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		require.NoError(t, store.Create(ctx, local))

		profile := googleProfile()
		profile.Email = "Jane@Example.COM"

		acct, err := svc.Callback(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, local.ID, acct.ID)
	})

	t.Run("rejects incomplete profiles", func(t *testing.T) {
		t.Parallel()
		svc, _ := newGoogleService()

		noID := googleProfile()
		noID.ProviderUserID = ""
		_, err := svc.Callback(ctx, noID)
		assert.ErrorIs(t, err, auth.ErrIncompleteProfile)

		noEmail := googleProfile()
		noEmail.Email = ""
		_, err = svc.Callback(ctx, noEmail)
		assert.ErrorIs(t, err, auth.ErrIncompleteProfile)
	})
}

func TestGoogleAuthURL(t *testing.T) {
	t.Parallel()

	svc, _ := newGoogleService()

	first, err := svc.AuthURL(context.Background())
	require.NoError(t, err)
	assert.Contains(t, first, "state=")
	assert.Contains(t, first, "client_id=client-id")

	second, err := svc.AuthURL(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "state must be unique per flow")
}
