package domain

import "time"

// Source describes one remote platform to harvest.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Type identifies the backend (e.g., "confluence", "discourse").
	Type string

	// Name is the human-readable name for this source.
	Name string

	// Config contains backend-specific configuration.
	Config map[string]string
}

// SourceKey builds the identifier a checkpoint is stored under.
func SourceKey(backend, origin string) string {
	return backend + "|" + origin
}

// SyncState tracks the harvest progress for a source.
// The checkpoint alone is the persisted resume state.
type SyncState struct {
	// SourceID links to the source being harvested.
	SourceID string

	// Checkpoint is the newest update time seen by the last successful harvest.
	Checkpoint time.Time

	// LastSync is when the last successful harvest completed.
	LastSync time.Time

	// Items is the number of envelopes emitted by the last successful harvest.
	Items int
}
