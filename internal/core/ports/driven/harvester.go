package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

// Harvester produces the envelopes of one remote platform.
// Each backend type (confluence, discourse) implements this interface.
type Harvester interface {
	// Name returns the backend identifier.
	Name() string

	// Version returns the backend version stamped on envelopes.
	Version() string

	// Origin returns the harvested server.
	Origin() string

	// Categories returns the categories this harvester can produce.
	Categories() []domain.Category

	// Capabilities returns what this harvester supports.
	Capabilities() HarvesterCapabilities

	// Harvest lazily yields the envelopes updated at or after the checkpoint.
	// A fatal error is yielded once and ends the sequence; envelopes yielded
	// before it remain valid. The sequence is finite and not restartable.
	Harvest(ctx context.Context, category domain.Category, checkpoint domain.Checkpoint) iter.Seq2[domain.Envelope, error]

	// Close releases resources.
	Close() error
}

// HarvesterCapabilities describes what a harvester supports.
type HarvesterCapabilities struct {
	// SupportsResume indicates harvests are checkpoint based and can resume.
	SupportsResume bool

	// SupportsArchive indicates raw responses can be recorded and replayed.
	SupportsArchive bool

	// SupportsAncestors indicates parent pages can be resolved.
	SupportsAncestors bool

	// SupportsConcurrency indicates independent items can be walked in parallel.
	SupportsConcurrency bool
}
