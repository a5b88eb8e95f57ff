package jwt_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellhq/inkwell/pkg/jwt"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty signing key", func(t *testing.T) {
		t.Parallel()

		_, err := jwt.New(nil)
		assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)

		_, err = jwt.NewFromString("")
		assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)
	})
}

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()

	svc, err := jwt.NewFromString("test-signing-key-at-least-32-bytes!!")
	require.NoError(t, err)

	t.Run("round trip preserves claims", func(t *testing.T) {
		t.Parallel()

		claims := jwt.StandardClaims{
			Subject:   "account-123",
			Issuer:    "inkwell",
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		}

		tokenString, err := svc.Generate(claims)
		require.NoError(t, err)
		assert.Len(t, strings.Split(tokenString, "."), 3)

		var parsed jwt.StandardClaims
		require.NoError(t, svc.Parse(tokenString, &parsed))
		assert.Equal(t, claims.Subject, parsed.Subject)
		assert.Equal(t, claims.Issuer, parsed.Issuer)
	})

	t.Run("rejects nil claims", func(t *testing.T) {
		t.Parallel()

		_, err := svc.Generate(nil)
		assert.ErrorIs(t, err, jwt.ErrMissingClaims)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		t.Parallel()

		tokenString, err := svc.Generate(jwt.StandardClaims{
			Subject:   "account-123",
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		})
		require.NoError(t, err)

		var parsed jwt.StandardClaims
		assert.ErrorIs(t, svc.Parse(tokenString, &parsed), jwt.ErrExpiredToken)
	})

	t.Run("rejects tampered payload", func(t *testing.T) {
		t.Parallel()

		tokenString, err := svc.Generate(jwt.StandardClaims{Subject: "account-123"})
		require.NoError(t, err)

		parts := strings.Split(tokenString, ".")
		tampered := parts[0] + ".eyJzdWIiOiJhdHRhY2tlciJ9." + parts[2]

		var parsed jwt.StandardClaims
		assert.ErrorIs(t, svc.Parse(tampered, &parsed), jwt.ErrInvalidSignature)
	})

	t.Run("rejects token signed with different key", func(t *testing.T) {
		t.Parallel()

		other, err := jwt.NewFromString("another-signing-key-32-bytes-long!!!")
		require.NoError(t, err)

		tokenString, err := other.Generate(jwt.StandardClaims{Subject: "account-123"})
		require.NoError(t, err)

		var parsed jwt.StandardClaims
		assert.ErrorIs(t, svc.Parse(tokenString, &parsed), jwt.ErrInvalidSignature)
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		t.Parallel()

		var parsed jwt.StandardClaims
		assert.ErrorIs(t, svc.Parse("not-a-token", &parsed), jwt.ErrInvalidToken)
		assert.ErrorIs(t, svc.Parse("a.b", &parsed), jwt.ErrInvalidToken)
	})
}
