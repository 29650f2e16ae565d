package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Ancestor is a parent page of a content item.
type Ancestor struct {
	// WebUIPath is the server relative path of the ancestor's UI page.
	WebUIPath string
}

// ContentSummary represents "this item exists or changed".
// It carries no version payload and seeds one version walk.
type ContentSummary struct {
	// ID is the stable content identifier.
	ID string

	// WebUIPath is the server relative path of the item's UI page.
	WebUIPath string

	// Ancestors is nil when the server did not report ancestors.
	Ancestors []Ancestor
}

// HistoricalVersion is one immutable snapshot of a content item.
type HistoricalVersion struct {
	// ContentID is the stable identifier shared by all versions of an item.
	ContentID string `json:"content_id"`

	// Number is the version number, starting at 1.
	Number int `json:"version"`

	// UpdatedAt is when this version was created.
	UpdatedAt time.Time `json:"updated_at"`

	// Latest is true when the server reports this as the newest version.
	Latest bool `json:"latest"`

	// ContentURL is the absolute UI URL of the item.
	ContentURL string `json:"content_url,omitempty"`

	// AncestorURLs is nil when ancestors were not requested or absent,
	// so "not requested" stays distinct from an explicit value.
	AncestorURLs []string `json:"ancestors,omitempty"`

	// Payload is the opaque content body as returned by the server.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Identity returns the composite "<contentId>#v<versionNumber>" identifier.
// Version numbers never repeat for the same content, so it is unique
// within a harvest.
func (v HistoricalVersion) Identity() string {
	return v.ContentID + "#v" + strconv.Itoa(v.Number)
}

// UpdatedOn implements Item.
func (v HistoricalVersion) UpdatedOn() time.Time {
	return v.UpdatedAt
}
