package connectors

import (
	"net/http"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

// IsItemUnreachable reports whether a failed item fetch only concerns that
// item: the server answered 404, or a server error other than a gateway or
// availability failure. Those three concern the whole server and stay fatal,
// as do non-status errors.
func IsItemUnreachable(err error) bool {
	code, ok := domain.StatusCode(err)
	if !ok {
		return false
	}
	switch {
	case code == http.StatusNotFound:
		return true
	case code == http.StatusBadGateway, code == http.StatusServiceUnavailable, code == http.StatusGatewayTimeout:
		return false
	}
	return code >= 500 && code <= 599
}
