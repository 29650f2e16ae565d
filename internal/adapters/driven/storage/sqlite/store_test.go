package sqlite

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.FileExists(t, store.Path())
	require.NoError(t, store.Close())

	// Reopening applies no migration twice.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var n int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSyncStateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and get keep full resolution", func(t *testing.T) {
		ss := setupTestStore(t).SyncStateStore()
		cp := time.Date(2016, 7, 8, 11, 14, 11, 123456789, time.UTC)
		now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

		require.NoError(t, ss.Save(ctx, domain.SyncState{SourceID: "confluence|http://a", Checkpoint: cp, LastSync: now, Items: 3}))

		got, err := ss.Get(ctx, "confluence|http://a")
		require.NoError(t, err)
		assert.True(t, cp.Equal(got.Checkpoint))
		assert.True(t, now.Equal(got.LastSync))
		assert.Equal(t, 3, got.Items)
	})

	t.Run("save updates", func(t *testing.T) {
		ss := setupTestStore(t).SyncStateStore()
		require.NoError(t, ss.Save(ctx, domain.SyncState{SourceID: "s", Checkpoint: time.Unix(1, 0)}))
		require.NoError(t, ss.Save(ctx, domain.SyncState{SourceID: "s", Checkpoint: time.Unix(2, 0)}))

		got, err := ss.Get(ctx, "s")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Checkpoint.Unix())
	})

	t.Run("list and delete", func(t *testing.T) {
		ss := setupTestStore(t).SyncStateStore()
		require.NoError(t, ss.Save(ctx, domain.SyncState{SourceID: "b", Checkpoint: time.Unix(1, 0)}))
		require.NoError(t, ss.Save(ctx, domain.SyncState{SourceID: "a", Checkpoint: time.Unix(1, 0)}))

		states, err := ss.List(ctx)
		require.NoError(t, err)
		require.Len(t, states, 2)
		assert.Equal(t, "a", states[0].SourceID)

		require.NoError(t, ss.Delete(ctx, "a"))
		_, err = ss.Get(ctx, "a")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, ss.Delete(ctx, "a"), domain.ErrNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := setupTestStore(t).SyncStateStore().Get(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestArchiveStore(t *testing.T) {
	ctx := context.Background()
	info := domain.ArchiveInfo{
		BackendName:    "confluence",
		BackendVersion: "1.0.0",
		Category:       domain.CategoryHistoricalContent,
		Origin:         "http://example.com",
	}
	params := url.Values{"version": {"1"}}

	t.Run("create assigns an id", func(t *testing.T) {
		as := setupTestStore(t).ArchiveStore()

		a, err := as.Create(ctx, info)
		require.NoError(t, err)
		assert.NotEmpty(t, a.Info().ID)
		assert.False(t, a.Info().CreatedAt.IsZero())

		opened, err := as.Open(ctx, a.Info().ID)
		require.NoError(t, err)
		assert.Equal(t, a.Info().ID, opened.Info().ID)
		assert.Equal(t, domain.CategoryHistoricalContent, opened.Info().Category)
	})

	t.Run("store and retrieve", func(t *testing.T) {
		as := setupTestStore(t).ArchiveStore()
		a, err := as.Create(ctx, info)
		require.NoError(t, err)

		rawURL := "http://example.com/rest/api/content/1"
		require.NoError(t, a.Store(ctx, domain.ArchivedResponse{
			Hashcode:   domain.RequestHash(rawURL, params),
			URL:        rawURL,
			Params:     params.Encode(),
			StatusCode: 404,
			Body:       []byte("gone"),
		}))

		resp, err := a.Retrieve(ctx, rawURL, params)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.Equal(t, []byte("gone"), resp.Body)
		assert.True(t, resp.Failed())

		_, err = a.Retrieve(ctx, rawURL, url.Values{"version": {"2"}})
		assert.ErrorIs(t, err, domain.ErrArchiveMiss)
	})

	t.Run("list and delete", func(t *testing.T) {
		as := setupTestStore(t).ArchiveStore()
		first := info
		first.CreatedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		second := info
		second.CreatedAt = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

		a2, err := as.Create(ctx, second)
		require.NoError(t, err)
		a1, err := as.Create(ctx, first)
		require.NoError(t, err)

		infos, err := as.List(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 2)
		assert.Equal(t, a1.Info().ID, infos[0].ID)
		assert.Equal(t, a2.Info().ID, infos[1].ID)

		require.NoError(t, as.Delete(ctx, a1.Info().ID))
		_, err = as.Open(ctx, a1.Info().ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete unknown archive", func(t *testing.T) {
		err := setupTestStore(t).ArchiveStore().Delete(ctx, "no-such-archive")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
