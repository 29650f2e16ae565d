package confluence

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/harvest/internal/connectors"
	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/core/ports/driven"
	"github.com/custodia-labs/harvest/internal/logger"
)

const (
	// BackendName identifies the harvester in envelopes and sync state.
	BackendName = "confluence"

	// BackendVersion is stamped on every envelope.
	BackendVersion = "1.0.0"
)

// Ensure Harvester implements the interface.
var _ driven.Harvester = (*Harvester)(nil)

// Harvester retrieves the historical contents of a Confluence server.
type Harvester struct {
	config *Config
	client *Client
	meta   connectors.Meta
	now    func() time.Time

	mu     sync.Mutex
	closed bool
}

// New creates a Confluence harvester issuing its requests through transport.
func New(cfg *Config, transport driven.Transport) *Harvester {
	client := NewClient(cfg.URL, transport, cfg.AddAncestors, cfg.MaxContents)
	client.SetStart(cfg.Start)
	return &Harvester{
		config: cfg,
		client: client,
		meta: connectors.Meta{
			BackendName:    BackendName,
			BackendVersion: BackendVersion,
			Origin:         client.BaseURL(),
			Tag:            cfg.Tag,
		},
		now: time.Now,
	}
}

// Name returns the backend identifier.
func (h *Harvester) Name() string {
	return BackendName
}

// Version returns the backend version.
func (h *Harvester) Version() string {
	return BackendVersion
}

// Origin returns the server base URL.
func (h *Harvester) Origin() string {
	return h.meta.Origin
}

// Categories returns the categories this harvester produces.
func (h *Harvester) Categories() []domain.Category {
	return []domain.Category{domain.CategoryHistoricalContent}
}

// Capabilities returns the harvester capabilities.
func (h *Harvester) Capabilities() driven.HarvesterCapabilities {
	return driven.HarvesterCapabilities{
		SupportsResume:      true,
		SupportsArchive:     true,
		SupportsAncestors:   true,
		SupportsConcurrency: true,
	}
}

// Harvest lazily yields the historical contents updated at or after the
// checkpoint. With more than one worker, the version walks of distinct
// contents run concurrently and their envelopes interleave; the versions of
// one content always keep their order.
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

		logger.Info("Fetching historical contents of '%s' from %s", h.meta.Origin, checkpoint)

		count := 0
		completed := true
		counted := func(env domain.Envelope, err error) bool {
			if err != nil {
				completed = false
				return yield(env, err)
			}
			count++
			if !yield(env, nil) {
				completed = false
				return false
			}
			return true
		}

		if h.config.Workers > 1 {
			h.harvestConcurrent(ctx, checkpoint, counted)
		} else {
			h.harvestSequential(ctx, checkpoint, counted)
		}

		if completed {
			logger.Info("Fetch process completed: %d historical contents fetched", count)
		}
	}
}

// Close marks the harvester as closed.
func (h *Harvester) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// harvestSequential drains each version walk before pulling the next summary.
func (h *Harvester) harvestSequential(ctx context.Context, checkpoint domain.Checkpoint, yield func(domain.Envelope, error) bool) {
	for summary, err := range Summaries(ctx, h.client, checkpoint) {
		if err != nil {
			yield(domain.Envelope{}, err)
			return
		}
		for v, err := range WalkVersions(ctx, h.client, summary.ID, checkpoint) {
			if err != nil {
				yield(domain.Envelope{}, err)
				return
			}
			if !yield(h.normalize(v, summary), nil) {
				return
			}
		}
	}
}

// harvestConcurrent fans the version walks out over a bounded pool of
// workers. Summaries are pulled only when a worker is free. A failure in any
// walk or page cancels the others; stopping the consumer cancels everything.
func (h *Harvester) harvestConcurrent(ctx context.Context, checkpoint domain.Checkpoint, yield func(domain.Envelope, error) bool) {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan domain.Envelope)
	errc := make(chan error, 1)

	go func() {
		defer close(out)

		g, gctx := errgroup.WithContext(wctx)
		g.SetLimit(h.config.Workers)

		var summaryErr error
		for summary, err := range Summaries(gctx, h.client, checkpoint) {
			if err != nil {
				summaryErr = err
				break
			}
			g.Go(func() error {
				for v, err := range WalkVersions(gctx, h.client, summary.ID, checkpoint) {
					if err != nil {
						return err
					}
					select {
					case out <- h.normalize(v, summary):
					case <-gctx.Done():
						return gctx.Err()
					}
				}
				return nil
			})
		}

		if summaryErr != nil && !isContextErr(summaryErr) {
			cancel()
		}
		walkErr := g.Wait()

		// A page failing with a cancellation was cut short by a failed walk.
		err := summaryErr
		if walkErr != nil && (err == nil || isContextErr(err)) {
			err = walkErr
		}
		errc <- err
	}()

	for env := range out {
		if !yield(env, nil) {
			cancel()
			for range out {
			}
			return
		}
	}
	if err := <-errc; err != nil {
		yield(domain.Envelope{}, err)
	}
}

func (h *Harvester) normalize(v domain.HistoricalVersion, summary domain.ContentSummary) domain.Envelope {
	return Normalize(h.meta, v, summary, h.config.AddAncestors, h.now())
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
