package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/core/ports/driven"
)

// HarvestService coordinates harvests and their checkpoints.
type HarvestService interface {
	// Run drains a harvester into a sink and persists the new checkpoint
	// once the harvest completes successfully.
	Run(ctx context.Context, harvester driven.Harvester, sink driven.Sink, req HarvestRequest) (*HarvestResult, error)

	// Status returns harvest status for a source.
	Status(ctx context.Context, sourceID string) (*HarvestStatus, error)
}

// HarvestRequest parameterises a harvest run.
type HarvestRequest struct {
	// Category to harvest. Empty selects the harvester's first category.
	Category domain.Category

	// From is an explicit checkpoint. It wins over any stored checkpoint.
	From *time.Time

	// Resume continues from the stored checkpoint when From is nil.
	Resume bool

	// Replay marks a run served from an archive. It neither resumes nor
	// stores a checkpoint.
	Replay bool
}

// HarvestResult summarises a harvest run.
// On failure it still reports what was emitted before the error.
type HarvestResult struct {
	// SourceID identifies the harvested source.
	SourceID string

	// Checkpoint is the checkpoint the run filtered against.
	Checkpoint domain.Checkpoint

	// NewCheckpoint is the newest update time emitted, or Checkpoint when nothing was.
	NewCheckpoint time.Time

	// Emitted is the number of envelopes written to the sink.
	Emitted int
}

// HarvestStatus represents the current state of a harvest.
type HarvestStatus struct {
	// SourceID identifies the source.
	SourceID string

	// Running indicates if a harvest is currently in progress.
	Running bool

	// Emitted is the count of envelopes written so far.
	Emitted int
}
