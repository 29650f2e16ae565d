package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

type webLinks struct {
	WebUI *string `json:"webui"`
}

type summaryJSON struct {
	ID        flexibleID `json:"id"`
	Links     webLinks   `json:"_links"`
	Ancestors []struct {
		Links webLinks `json:"_links"`
	} `json:"ancestors"`
}

type summaryPageJSON struct {
	Results *[]summaryJSON `json:"results"`
}

// flexibleID accepts identifiers encoded as JSON strings or numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id is neither a string nor a number: %s", b)
	}
	*f = flexibleID(n.String())
	return nil
}

// ParseContentsSummary parses one raw summary page, preserving server order.
// A page without a results list, or an entry or ancestor without an id or
// a web UI link, is malformed.
func ParseContentsSummary(raw []byte) ([]domain.ContentSummary, error) {
	var page summaryPageJSON
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("%w: contents summary: %v", domain.ErrMalformedResponse, err)
	}
	if page.Results == nil {
		return nil, fmt.Errorf("%w: contents summary has no results", domain.ErrMalformedResponse)
	}

	summaries := make([]domain.ContentSummary, 0, len(*page.Results))
	for i, r := range *page.Results {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: contents summary entry %d has no id", domain.ErrMalformedResponse, i)
		}
		if r.Links.WebUI == nil {
			return nil, fmt.Errorf("%w: content %s has no web UI link", domain.ErrMalformedResponse, r.ID)
		}
		s := domain.ContentSummary{
			ID:        string(r.ID),
			WebUIPath: *r.Links.WebUI,
		}
		if r.Ancestors != nil {
			s.Ancestors = make([]domain.Ancestor, 0, len(r.Ancestors))
			for j, a := range r.Ancestors {
				if a.Links.WebUI == nil {
					return nil, fmt.Errorf("%w: ancestor %d of content %s has no web UI link",
						domain.ErrMalformedResponse, j, r.ID)
				}
				s.Ancestors = append(s.Ancestors, domain.Ancestor{WebUIPath: *a.Links.WebUI})
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// Summaries flattens the summary pages of the contents changed since the
// checkpoint into a lazy sequence, in server order. The first failure is
// yielded and ends the sequence.
func Summaries(ctx context.Context, client *Client, checkpoint domain.Checkpoint) iter.Seq2[domain.ContentSummary, error] {
	return func(yield func(domain.ContentSummary, error) bool) {
		for raw, err := range client.Contents(ctx, checkpoint) {
			if err != nil {
				yield(domain.ContentSummary{}, err)
				return
			}
			summaries, err := ParseContentsSummary(raw)
			if err != nil {
				yield(domain.ContentSummary{}, err)
				return
			}
			for _, s := range summaries {
				if !yield(s, nil) {
					return
				}
			}
		}
	}
}
