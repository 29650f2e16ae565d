package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestSource_Fields tests Source structure fields
func TestSource_Fields(t *testing.T) {
	source := Source{
		ID:     "source-123",
		Type:   "confluence",
		Name:   "Team wiki",
		Config: map[string]string{"url": "https://wiki.example.com"},
	}

	assert.Equal(t, "source-123", source.ID)
	assert.Equal(t, "confluence", source.Type)
	assert.Equal(t, "Team wiki", source.Name)
	assert.Equal(t, "https://wiki.example.com", source.Config["url"])
}

func TestSourceKey(t *testing.T) {
	assert.Equal(t, "confluence|https://wiki.example.com", SourceKey("confluence", "https://wiki.example.com"))
	assert.NotEqual(t, SourceKey("confluence", "a"), SourceKey("discourse", "a"))
}

// TestSyncState_ZeroTime tests SyncState with zero time (never harvested)
func TestSyncState_ZeroTime(t *testing.T) {
	state := SyncState{SourceID: "source-123"}

	assert.True(t, state.Checkpoint.IsZero())
	assert.True(t, state.LastSync.IsZero())
	assert.Equal(t, 0, state.Items)
}

func TestSyncState_Fields(t *testing.T) {
	now := time.Now()
	state := SyncState{SourceID: "s", Checkpoint: now, LastSync: now, Items: 3}

	assert.Equal(t, "s", state.SourceID)
	assert.Equal(t, now, state.Checkpoint)
	assert.Equal(t, 3, state.Items)
}
