package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"time"
)

// ArchiveInfo describes an archive of raw responses recorded by one harvest.
type ArchiveInfo struct {
	// ID is the unique archive identifier.
	ID string

	// BackendName is the backend that recorded the archive.
	BackendName string

	// BackendVersion is the backend version that recorded the archive.
	BackendVersion string

	// Category is the category harvested while recording.
	Category Category

	// Origin is the harvested server.
	Origin string

	// CreatedAt is when recording started.
	CreatedAt time.Time
}

// ArchivedResponse is one raw transport response kept for replay.
type ArchivedResponse struct {
	// ArchiveID links to the owning archive.
	ArchiveID string

	// Hashcode identifies the request (URL plus encoded parameters).
	Hashcode string

	// URL is the requested URL without parameters.
	URL string

	// Params is the encoded query string sent with the request.
	Params string

	// StatusCode is the HTTP-like status of the response.
	StatusCode int

	// Body is the raw response body, or the server message for error statuses.
	Body []byte

	// CreatedAt is when the response was archived.
	CreatedAt time.Time
}

// Failed reports whether the archived response carries an error status.
func (r ArchivedResponse) Failed() bool {
	return r.StatusCode >= 400
}

// RequestHash identifies a request by its URL and encoded parameters.
// Parameter order does not matter.
func RequestHash(rawURL string, params url.Values) string {
	sum := sha256.Sum256([]byte(rawURL + "?" + params.Encode()))
	return hex.EncodeToString(sum[:])
}
