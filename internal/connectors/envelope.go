package connectors

import (
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

// Meta is the backend metadata stamped on every envelope.
type Meta struct {
	BackendName    string
	BackendVersion string
	Origin         string
	Tag            string
}

// ItemUUID derives a deterministic UUID for an item of an origin, so the same
// version harvested twice yields the same value.
func ItemUUID(origin, identity string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(origin+"#"+identity)).String()
}

// NewEnvelope wraps an item in the canonical envelope.
// The tag defaults to the origin.
func NewEnvelope(meta Meta, category domain.Category, item domain.Item, fetchedAt time.Time) domain.Envelope {
	tag := meta.Tag
	if tag == "" {
		tag = meta.Origin
	}
	identity := item.Identity()
	return domain.Envelope{
		BackendName:    meta.BackendName,
		BackendVersion: meta.BackendVersion,
		Category:       category,
		Origin:         meta.Origin,
		Tag:            tag,
		UUID:           ItemUUID(meta.Origin, identity),
		ID:             identity,
		UpdatedOnEpoch: domain.EpochSeconds(item.UpdatedOn()),
		FetchedOn:      domain.EpochSeconds(fetchedAt),
		Data:           item,
	}
}
