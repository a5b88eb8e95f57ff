package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellhq/inkwell/pkg/auth"
)

func TestMemoryStateStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("consume is single-use", func(t *testing.T) {
		t.Parallel()
		store := auth.NewMemoryStateStore()

		require.NoError(t, store.Store(ctx, "state-1", time.Minute))
		require.NoError(t, store.Consume(ctx, "state-1"))
		assert.ErrorIs(t, store.Consume(ctx, "state-1"), auth.ErrStateNotFound)
	})

	t.Run("unknown state is rejected", func(t *testing.T) {
		t.Parallel()
		store := auth.NewMemoryStateStore()
		assert.ErrorIs(t, store.Consume(ctx, "never-stored"), auth.ErrStateNotFound)
	})

	t.Run("expired state is rejected", func(t *testing.T) {
		t.Parallel()
		store := auth.NewMemoryStateStore()

		require.NoError(t, store.Store(ctx, "state-1", -time.Second))
		assert.ErrorIs(t, store.Consume(ctx, "state-1"), auth.ErrStateNotFound)
	})
}
