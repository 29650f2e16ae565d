package driven

import (
	"context"
	"net/url"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

// Archive holds the raw responses recorded by one harvest.
type Archive interface {
	// Info describes the archive.
	Info() domain.ArchiveInfo

	// Store appends a raw response. Storing the same request twice keeps the latest.
	Store(ctx context.Context, resp domain.ArchivedResponse) error

	// Retrieve returns the response archived for a request.
	// Returns domain.ErrArchiveMiss when nothing was recorded for it.
	Retrieve(ctx context.Context, rawURL string, params url.Values) (*domain.ArchivedResponse, error)
}

// ArchiveStore manages archives.
type ArchiveStore interface {
	// Create starts a new archive. An empty info.ID is assigned a fresh one.
	Create(ctx context.Context, info domain.ArchiveInfo) (Archive, error)

	// Open returns an existing archive.
	// Returns domain.ErrNotFound if it does not exist.
	Open(ctx context.Context, id string) (Archive, error)

	// List returns all archives, oldest first.
	List(ctx context.Context) ([]domain.ArchiveInfo, error)

	// Delete removes an archive and its responses.
	// Returns domain.ErrNotFound if the archive doesn't exist.
	Delete(ctx context.Context, id string) error
}
