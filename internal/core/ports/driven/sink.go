package driven

import (
	"context"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

// Sink receives emitted envelopes.
type Sink interface {
	// Write hands one envelope to the downstream consumer.
	Write(ctx context.Context, envelope domain.Envelope) error

	// Close flushes and releases the sink.
	Close() error
}
