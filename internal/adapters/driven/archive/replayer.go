package archive

import (
	"context"
	"fmt"
	"net/url"

	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/core/ports/driven"
)

// Ensure Replayer implements the interface.
var _ driven.Transport = (*Replayer)(nil)

// Replayer is a Transport serving the responses of an archive.
type Replayer struct {
	archive driven.Archive
}

// NewReplayer creates a replayer over archive.
func NewReplayer(archive driven.Archive) *Replayer {
	return &Replayer{archive: archive}
}

// Fetch returns the archived response of a request. Archived error statuses
// are returned as *domain.StatusError; requests never recorded fail with
// domain.ErrArchiveMiss.
func (r *Replayer) Fetch(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := r.archive.Retrieve(ctx, rawURL, params)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", rawURL, err)
	}
	if resp.Failed() {
		return nil, domain.NewStatusError(resp.StatusCode, rawURL, string(resp.Body))
	}
	return resp.Body, nil
}
