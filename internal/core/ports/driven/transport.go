package driven

import (
	"context"
	"net/url"
)

// Transport performs requests against a remote platform.
//
// Failed requests that reached the server are reported as
// *domain.StatusError so callers can classify them by status code.
// Every other error (network, timeout, cancellation) is fatal.
type Transport interface {
	// Fetch requests rawURL with params merged into its query string
	// and returns the raw response body.
	Fetch(ctx context.Context, rawURL string, params url.Values) ([]byte, error)
}
