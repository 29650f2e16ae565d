package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

func TestSyncStateStore(t *testing.T) {
	ctx := context.Background()
	cp := time.Date(2016, 7, 8, 11, 14, 11, 0, time.UTC)

	t.Run("save and get", func(t *testing.T) {
		store := NewSyncStateStore()
		require.NoError(t, store.Save(ctx, domain.SyncState{SourceID: "src-1", Checkpoint: cp, Items: 2}))

		got, err := store.Get(ctx, "src-1")
		require.NoError(t, err)
		assert.Equal(t, cp, got.Checkpoint)
		assert.Equal(t, 2, got.Items)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		store := NewSyncStateStore()
		require.NoError(t, store.Save(ctx, domain.SyncState{SourceID: "src-1", Checkpoint: cp}))

		got, err := store.Get(ctx, "src-1")
		require.NoError(t, err)
		got.Items = 99

		again, err := store.Get(ctx, "src-1")
		require.NoError(t, err)
		assert.Zero(t, again.Items)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := NewSyncStateStore().Get(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list is ordered", func(t *testing.T) {
		store := NewSyncStateStore()
		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, store.Save(ctx, domain.SyncState{SourceID: id}))
		}

		states, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, states, 3)
		assert.Equal(t, "a", states[0].SourceID)
		assert.Equal(t, "c", states[2].SourceID)
	})

	t.Run("delete", func(t *testing.T) {
		store := NewSyncStateStore()
		require.NoError(t, store.Save(ctx, domain.SyncState{SourceID: "src-1"}))
		require.NoError(t, store.Delete(ctx, "src-1"))
		assert.ErrorIs(t, store.Delete(ctx, "src-1"), domain.ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, "never-saved"), domain.ErrNotFound)

		_, err := store.Get(ctx, "src-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("concurrent saves", func(t *testing.T) {
		store := NewSyncStateStore()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_ = store.Save(ctx, domain.SyncState{SourceID: "shared", Items: n})
			}(i)
		}
		wg.Wait()

		states, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, states, 1)
	})
}
