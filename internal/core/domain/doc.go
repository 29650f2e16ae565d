// Package domain defines the core entities of the harvester.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Checkpoint: the instant a harvest filters versions against
//   - ContentSummary: a lightweight "this item changed" descriptor
//   - HistoricalVersion: one immutable snapshot of a content item
//   - Post: one discussion board message
//   - Envelope: the normalised unit handed to downstream indexers
//   - SyncState: the persisted checkpoint of a source
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
