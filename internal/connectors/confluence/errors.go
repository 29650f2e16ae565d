package confluence

import (
	"errors"

	"github.com/custodia-labs/harvest/internal/connectors"
)

// Confluence-specific errors.
var (
	// ErrConfigMissingURL indicates the server URL was not configured.
	ErrConfigMissingURL = errors.New("confluence: url is required")

	// ErrConfigInvalidAncestors indicates add_ancestors is not a boolean.
	ErrConfigInvalidAncestors = errors.New("confluence: add_ancestors must be a boolean")

	// ErrConfigInvalidMaxContents indicates max_contents is not a positive integer.
	ErrConfigInvalidMaxContents = errors.New("confluence: max_contents must be a positive integer")

	// ErrConfigInvalidStart indicates start is not a non-negative integer.
	ErrConfigInvalidStart = errors.New("confluence: start must be a non-negative integer")

	// ErrConfigInvalidWorkers indicates workers is not a positive integer.
	ErrConfigInvalidWorkers = errors.New("confluence: workers must be a positive integer")
)

// IsItemUnreachable reports whether a version fetch failure only concerns the
// requested content. Confluence answers 404 or 500 for contents removed or
// made private mid-history.
func IsItemUnreachable(err error) bool {
	return connectors.IsItemUnreachable(err)
}
