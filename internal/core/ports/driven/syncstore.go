package driven

import (
	"context"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

// SyncStateStore persists harvest checkpoints.
type SyncStateStore interface {
	// Save stores or updates sync state.
	Save(ctx context.Context, state domain.SyncState) error

	// Get retrieves sync state for a source.
	// Returns domain.ErrNotFound if the source was never harvested.
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)

	// List returns every stored sync state.
	List(ctx context.Context) ([]domain.SyncState, error)

	// Delete removes sync state for a source.
	// Returns domain.ErrNotFound if no state is stored.
	Delete(ctx context.Context, sourceID string) error
}
