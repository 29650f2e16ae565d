// Package sink provides envelope writers.
package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/core/ports/driven"
)

// Ensure JSONLines implements the interface.
var _ driven.Sink = (*JSONLines)(nil)

// JSONLines writes one JSON envelope per line.
type JSONLines struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
	count  int
}

// NewJSONLines creates a sink writing to w. If w is an io.Closer other than
// os.Stdout, Close closes it.
func NewJSONLines(w io.Writer) *JSONLines {
	buf := bufio.NewWriter(w)
	s := &JSONLines{buf: buf, enc: json.NewEncoder(buf)}
	if c, ok := w.(io.Closer); ok && w != io.Writer(os.Stdout) {
		s.closer = c
	}
	return s
}

// OpenFile creates a sink writing to path, truncating it.
func OpenFile(path string) (*JSONLines, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return NewJSONLines(f), nil
}

// Write encodes one envelope.
func (s *JSONLines) Write(ctx context.Context, env domain.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(env); err != nil {
		return fmt.Errorf("encode envelope %s: %w", env.ID, err)
	}
	s.count++
	return nil
}

// Count returns the number of envelopes written.
func (s *JSONLines) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Close flushes buffered envelopes and closes the underlying writer.
func (s *JSONLines) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
