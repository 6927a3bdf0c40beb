package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the behaviour every backend must share.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		got, err := kv.Get(ctx, "gamingmarket_cart_v1:missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, got)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "gamingmarket_cart_v1:a", []byte(`[]`)))

		got, err := kv.Get(ctx, "gamingmarket_cart_v1:a")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(got))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "gamingmarket_cart_v1:b", []byte(`first`)))
		require.NoError(t, kv.Set(ctx, "gamingmarket_cart_v1:b", []byte(`second`)))

		got, err := kv.Get(ctx, "gamingmarket_cart_v1:b")
		require.NoError(t, err)
		assert.Equal(t, `second`, string(got))
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "gamingmarket_cart_v1:c", []byte(`c`)))
		require.NoError(t, kv.Set(ctx, "gamingmarket_cart_v1:d", []byte(`d`)))

		got, err := kv.Get(ctx, "gamingmarket_cart_v1:c")
		require.NoError(t, err)
		assert.Equal(t, `c`, string(got))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "gamingmarket_cart_v1:e", []byte(`e`)))
		require.NoError(t, kv.Delete(ctx, "gamingmarket_cart_v1:e"))

		_, err := kv.Get(ctx, "gamingmarket_cart_v1:e")
		assert.ErrorIs(t, err, ErrNotFound)

		assert.NoError(t, kv.Delete(ctx, "gamingmarket_cart_v1:e"))
	})
}
