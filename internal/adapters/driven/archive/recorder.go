package archive

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.Transport = (*Recorder)(nil)

// Recorder is a Transport that appends every response of the wrapped
// transport to an archive.
type Recorder struct {
	next    driven.Transport
	archive driven.Archive
	now     func() time.Time
}

// NewRecorder creates a recorder storing the responses of next into archive.
func NewRecorder(next driven.Transport, archive driven.Archive) *Recorder {
	return &Recorder{next: next, archive: archive, now: time.Now}
}

// Fetch forwards the request and archives its outcome. Network failures are
// not archived.
func (r *Recorder) Fetch(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	body, err := r.next.Fetch(ctx, rawURL, params)

	resp := domain.ArchivedResponse{
		ArchiveID:  r.archive.Info().ID,
		Hashcode:   domain.RequestHash(rawURL, params),
		URL:        rawURL,
		Params:     params.Encode(),
		StatusCode: 200,
		Body:       body,
		CreatedAt:  r.now().UTC(),
	}

	if err != nil {
		var se *domain.StatusError
		if !errors.As(err, &se) {
			return nil, err
		}
		resp.StatusCode = se.StatusCode
		resp.Body = []byte(se.Message)
	}

	if storeErr := r.archive.Store(ctx, resp); storeErr != nil {
		return nil, fmt.Errorf("archive response %s: %w", rawURL, storeErr)
	}
	return body, err
}
