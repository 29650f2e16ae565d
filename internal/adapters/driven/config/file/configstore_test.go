package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		dir := t.TempDir()

		store, err := NewConfigStore(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())

		_, ok := store.Get("harvest.workers")
		assert.False(t, ok)
	})

	t.Run("nested directory is created", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")

		_, err := NewConfigStore(dir)
		require.NoError(t, err)
		assert.DirExists(t, dir)
	})

	t.Run("corrupted file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[[[ not toml"), 0600))

		_, err := NewConfigStore(dir)
		assert.Error(t, err)
	})
}

func TestConfigStore_ReadsTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[harvest]
workers = 4

[confluence]
max_contents = 50
add_ancestors = true

[transport]
rate = 2.5
burst = 3
user_agent = "harvest-test"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 4, store.GetInt("harvest.workers"))
	assert.Equal(t, 50, store.GetInt("confluence.max_contents"))
	assert.True(t, store.GetBool("confluence.add_ancestors"))
	assert.Equal(t, 2.5, store.GetFloat("transport.rate"))
	assert.Equal(t, 3.0, store.GetFloat("transport.burst"))
	assert.Equal(t, "harvest-test", store.GetString("transport.user_agent"))

	t.Run("mistyped keys return zero values", func(t *testing.T) {
		assert.Zero(t, store.GetInt("transport.user_agent"))
		assert.Empty(t, store.GetString("harvest.workers"))
		assert.False(t, store.GetBool("harvest.workers"))
		assert.Zero(t, store.GetFloat("missing.key"))
	})
}

func TestConfigStore_Persistence(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("harvest.workers", 8))
	require.NoError(t, store.Set("transport.user_agent", "ua"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[harvest]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 8, reloaded.GetInt("harvest.workers"))
	assert.Equal(t, "ua", reloaded.GetString("transport.user_agent"))
}

func TestFlattenExpand(t *testing.T) {
	nested := map[string]any{
		"transport": map[string]any{"rate": 1.0, "tls": map[string]any{"verify": true}},
		"top":       "x",
	}

	flat := flattenMap(nested, "")
	assert.Equal(t, map[string]any{
		"transport.rate":       1.0,
		"transport.tls.verify": true,
		"top":                  "x",
	}, flat)
	assert.Equal(t, nested, expandMap(flat))
}
