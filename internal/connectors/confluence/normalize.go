package confluence

import (
	"time"

	"github.com/custodia-labs/harvest/internal/connectors"
	"github.com/custodia-labs/harvest/internal/core/domain"
)

// Normalize resolves the UI URLs of a version against the origin and wraps it
// in an envelope. Ancestor URLs are set only when resolveAncestors is true
// and the summary reports at least one ancestor.
func Normalize(meta connectors.Meta, v domain.HistoricalVersion, summary domain.ContentSummary, resolveAncestors bool, fetchedAt time.Time) domain.Envelope {
	v.ContentURL = connectors.URIJoin(meta.Origin, summary.WebUIPath)
	v.AncestorURLs = nil

	if resolveAncestors && len(summary.Ancestors) > 0 {
		v.AncestorURLs = make([]string, 0, len(summary.Ancestors))
		for _, a := range summary.Ancestors {
			v.AncestorURLs = append(v.AncestorURLs, connectors.URIJoin(meta.Origin, a.WebUIPath))
		}
	}

	return connectors.NewEnvelope(meta, domain.CategoryHistoricalContent, v, fetchedAt)
}
