package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

func TestArchiveList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		setupCLI(t)
		stdout, _, err := execute(t, "archive", "list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "No archives recorded.")
	})

	t.Run("lists recorded archives", func(t *testing.T) {
		deps := setupCLI(t)
		_, err := deps.archiveStore.Create(context.Background(), domain.ArchiveInfo{
			ID:             "arc-1",
			BackendName:    "confluence",
			BackendVersion: "1.0.0",
			Origin:         "http://example.com",
		})
		require.NoError(t, err)

		stdout, _, err := execute(t, "archive", "list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "arc-1")
		assert.Contains(t, stdout, "confluence 1.0.0")
		assert.Contains(t, stdout, "http://example.com")
	})

	t.Run("not configured", func(t *testing.T) {
		setupCLI(t)
		Configure(Dependencies{})
		_, _, err := execute(t, "archive", "list")
		assert.Error(t, err)
	})
}

func TestArchiveDelete(t *testing.T) {
	deps := setupCLI(t)
	_, err := deps.archiveStore.Create(context.Background(), domain.ArchiveInfo{ID: "arc-1"})
	require.NoError(t, err)

	stdout, _, err := execute(t, "archive", "delete", "arc-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted archive arc-1")

	_, err = deps.archiveStore.Open(context.Background(), "arc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestArchiveDelete_Unknown(t *testing.T) {
	setupCLI(t)
	stdout, _, err := execute(t, "archive", "delete", "no-such-archive")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotContains(t, stdout, "Deleted archive")
}

func TestArchiveDelete_RequiresID(t *testing.T) {
	setupCLI(t)
	_, _, err := execute(t, "archive", "delete")
	assert.Error(t, err)
}
