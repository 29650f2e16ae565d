package domain

import "time"

// Category is the fixed kind tag of the items a harvester emits.
type Category string

const (
	// CategoryHistoricalContent tags historical content versions.
	CategoryHistoricalContent Category = "historical content"

	// CategoryPost tags discussion board posts.
	CategoryPost Category = "post"
)

// Item is a harvested record able to describe its own identity and freshness.
type Item interface {
	// Identity returns a value unique across one harvest.
	Identity() string

	// UpdatedOn returns when the record last changed.
	UpdatedOn() time.Time
}

// Envelope is the unit emitted to callers of a harvest.
type Envelope struct {
	BackendName    string   `json:"backend_name"`
	BackendVersion string   `json:"backend_version"`
	Category       Category `json:"category"`
	Origin         string   `json:"origin"`
	Tag            string   `json:"tag"`
	UUID           string   `json:"uuid"`
	ID             string   `json:"identity"`
	UpdatedOnEpoch float64  `json:"updated_on"`
	FetchedOn      float64  `json:"timestamp"`
	Data           Item     `json:"data"`
}

// Identity returns the stable composite identity of the envelope.
func (e Envelope) Identity() string {
	return e.ID
}

// UpdatedOn returns the update time of the envelope in UTC.
func (e Envelope) UpdatedOn() time.Time {
	return FromEpochSeconds(e.UpdatedOnEpoch)
}

// Identity extracts the deduplication key of an envelope.
func Identity(e Envelope) string {
	return e.ID
}

// UpdatedOnEpoch extracts the freshness timestamp of an envelope.
func UpdatedOnEpoch(e Envelope) float64 {
	return e.UpdatedOnEpoch
}

// CategoryOf extracts the category tag of an envelope.
func CategoryOf(e Envelope) Category {
	return e.Category
}
