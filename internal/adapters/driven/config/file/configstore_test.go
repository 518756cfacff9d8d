package file

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore(t *testing.T) {
	t.Run("set and get round-trip", func(t *testing.T) {
		store, err := NewConfigStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Set("pipeline.max_batch_size", 50))
		require.NoError(t, store.Set("gmail.query", "newsletters"))
		require.NoError(t, store.Set("verbose", true))

		assert.Equal(t, 50, store.GetInt("pipeline.max_batch_size"))
		assert.Equal(t, "newsletters", store.GetString("gmail.query"))
		assert.True(t, store.GetBool("verbose"))
	})

	t.Run("missing keys yield zero values", func(t *testing.T) {
		store, err := NewConfigStore(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, 0, store.GetInt("nope"))
		assert.Equal(t, "", store.GetString("nope"))
		assert.False(t, store.GetBool("nope"))

		_, ok := store.Get("nope")
		assert.False(t, ok)
	})

	t.Run("values survive a reload", func(t *testing.T) {
		dir := t.TempDir()

		store, err := NewConfigStore(dir)
		require.NoError(t, err)
		require.NoError(t, store.Set("pipeline.lookback_hours", 48))

		reloaded, err := NewConfigStore(dir)
		require.NoError(t, err)
		// TOML integers come back as int64.
		assert.Equal(t, 48, reloaded.GetInt("pipeline.lookback_hours"))

		require.FileExists(t, filepath.Join(dir, "config.toml"))
	})

	t.Run("delete removes the key", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewConfigStore(dir)
		require.NoError(t, err)

		require.NoError(t, store.Set("k", "v"))
		require.NoError(t, store.Delete("k"))

		_, ok := store.Get("k")
		assert.False(t, ok)

		reloaded, err := NewConfigStore(dir)
		require.NoError(t, err)
		_, ok = reloaded.Get("k")
		assert.False(t, ok)
	})

	t.Run("wrong type yields zero value", func(t *testing.T) {
		store, err := NewConfigStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Set("k", "not an int"))
		assert.Equal(t, 0, store.GetInt("k"))
	})
}
