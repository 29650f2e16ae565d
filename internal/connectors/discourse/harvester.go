package discourse

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/harvest/internal/connectors"
	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/core/ports/driven"
	"github.com/custodia-labs/harvest/internal/logger"
)

const (
	// BackendName identifies the harvester in envelopes and sync state.
	BackendName = "discourse"

	// BackendVersion is stamped on every envelope.
	BackendVersion = "1.0.0"
)

// Ensure Harvester implements the interface.
var _ driven.Harvester = (*Harvester)(nil)

// Harvester retrieves the posts of a Discourse board.
type Harvester struct {
	client *Client
	meta   connectors.Meta
	now    func() time.Time

	mu     sync.Mutex
	closed bool
}

// New creates a Discourse harvester issuing its requests through transport.
func New(cfg *Config, transport driven.Transport) *Harvester {
	return &Harvester{
		client: NewClient(cfg.URL, transport, cfg.MaxTopics),
		meta: connectors.Meta{
			BackendName:    BackendName,
			BackendVersion: BackendVersion,
			Origin:         cfg.URL,
			Tag:            cfg.Tag,
		},
		now: time.Now,
	}
}

// Name returns the backend identifier.
func (h *Harvester) Name() string { return BackendName }

// Version returns the backend version.
func (h *Harvester) Version() string { return BackendVersion }

// Origin returns the board base URL.
func (h *Harvester) Origin() string { return h.meta.Origin }

// Categories returns the categories this harvester produces.
func (h *Harvester) Categories() []domain.Category {
	return []domain.Category{domain.CategoryPost}
}

// Capabilities returns the harvester capabilities.
func (h *Harvester) Capabilities() driven.HarvesterCapabilities {
	return driven.HarvesterCapabilities{
		SupportsResume: true,
	}
}

// Harvest lazily yields the posts updated at or after the checkpoint.
func (h *Harvester) Harvest(ctx context.Context, category domain.Category, checkpoint domain.Checkpoint) iter.Seq2[domain.Envelope, error] {
	return func(yield func(domain.Envelope, error) bool) {
		h.mu.Lock()
		closed := h.closed
		h.mu.Unlock()
		if closed {
			yield(domain.Envelope{}, domain.ErrHarvesterClosed)
			return
		}
		if !slices.Contains(h.Categories(), category) {
			yield(domain.Envelope{}, fmt.Errorf("%w: %q for %s", domain.ErrUnsupportedCategory, category, BackendName))
			return
		}

		logger.Info("Looking for topics at '%s', updated from '%s'", h.meta.Origin, checkpoint)

		count := 0

		for ref, err := range Topics(ctx, h.client, checkpoint) {
			if err != nil {
				yield(domain.Envelope{}, err)
				return
			}
			for post, err := range WalkPosts(ctx, h.client, ref.ID, checkpoint) {
				if err != nil {
					yield(domain.Envelope{}, err)
					return
				}
				count++
				if !yield(connectors.NewEnvelope(h.meta, domain.CategoryPost, post, h.now()), nil) {
					return
				}
			}
		}

		logger.Info("Fetch process completed: %d posts fetched", count)
	}
}

// Close marks the harvester as closed.
func (h *Harvester) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}
