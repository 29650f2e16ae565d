package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors represent harvesting failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnsupportedCategory indicates a harvester was asked for a category it does not produce.
	ErrUnsupportedCategory = errors.New("unsupported category")

	// ErrHarvestInProgress indicates a harvest for the same source is already running.
	ErrHarvestInProgress = errors.New("harvest in progress")

	// ErrMalformedResponse indicates a decoded response lacks required fields.
	// It is always fatal for the harvest.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrHarvesterClosed indicates the harvester has been closed.
	ErrHarvesterClosed = errors.New("harvester closed")

	// Archive Errors.

	// ErrArchiveMiss indicates a replayed request has no archived response.
	ErrArchiveMiss = errors.New("response not found in archive")

	// ErrArchiveUnsupported indicates the backend cannot be archived or replayed.
	ErrArchiveUnsupported = errors.New("archiving not supported")

	// Authentication Errors.

	// ErrAuthRequired indicates the remote server requires credentials.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the credentials were rejected.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates the remote rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// StatusError is returned by transports when the remote server answers
// with an HTTP-like error status. Err holds the sentinel matching the
// status, if any.
type StatusError struct {
	StatusCode int
	URL        string
	Message    string
	Err        error
}

// NewStatusError creates a StatusError classified by ClassifyStatus.
func NewStatusError(code int, url, message string) *StatusError {
	return &StatusError{
		StatusCode: code,
		URL:        url,
		Message:    message,
		Err:        ClassifyStatus(code),
	}
}

// ClassifyStatus maps a status code to ErrAuthRequired, ErrAuthInvalid or
// ErrRateLimited. Other codes have no sentinel.
func ClassifyStatus(code int) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrAuthRequired
	case http.StatusForbidden:
		return ErrAuthInvalid
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d %s (URL: %s)", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
	}
	return fmt.Sprintf("%d %s: %s (URL: %s)", e.StatusCode, http.StatusText(e.StatusCode), e.Message, e.URL)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the status code carried by err, if any.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}
