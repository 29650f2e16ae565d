package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"

	"github.com/custodia-labs/harvest/internal/connectors"
	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/core/ports/driven"
	"github.com/custodia-labs/harvest/internal/logger"
)

// API resources and parameters.
const (
	APIPath           = "rest/api"
	ResourceContent   = "content"
	ResourceSearch    = "search"
	ParamCQL          = "cql"
	ParamLimit        = "limit"
	ParamStart        = "start"
	ParamExpand       = "expand"
	ParamVersion      = "version"
	ParamStatus       = "status"
	StatusHistorical  = "historical"
	ExpandAncestors   = "ancestors"
	contentsCQLFormat = "lastModified>='%s' order by lastModified"
)

// versionExpand is the expansion requested for every historical version.
var versionExpand = []string{"body.storage", "history", "version"}

// Client issues summary and version requests against a Confluence server.
type Client struct {
	baseURL      string
	transport    driven.Transport
	addAncestors bool
	maxContents  int
	start        int
}

// NewClient creates a client for baseURL. maxContents caps the page size of
// summary requests; non-positive values fall back to DefaultMaxContents.
func NewClient(baseURL string, transport driven.Transport, addAncestors bool, maxContents int) *Client {
	if maxContents <= 0 {
		maxContents = DefaultMaxContents
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		transport:    transport,
		addAncestors: addAncestors,
		maxContents:  maxContents,
	}
}

// SetStart makes the first summary request skip the first n results.
func (c *Client) SetStart(n int) {
	c.start = n
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// pageLinks holds the continuation link of a summary page.
type pageLinks struct {
	Links struct {
		Next string `json:"next"`
	} `json:"_links"`
}

// Contents lazily yields the raw summary pages of the contents changed at or
// after the checkpoint, skipping the start offset if one is set. The server's
// continuation link is followed until a page carries none. A failed or malformed page is yielded as an error and
// ends the sequence.
func (c *Client) Contents(ctx context.Context, checkpoint domain.Checkpoint) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		rawURL := c.resourceURL(ResourceContent, ResourceSearch)
		params := url.Values{
			ParamCQL:   {fmt.Sprintf(contentsCQLFormat, checkpoint.QueryValue())},
			ParamLimit: {strconv.Itoa(c.maxContents)},
		}
		if c.addAncestors {
			params.Set(ParamExpand, ExpandAncestors)
		}
		if c.start > 0 {
			params.Set(ParamStart, strconv.Itoa(c.start))
		}

		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			logger.Debug("Confluence client requests: %s params: %s", rawURL, params.Encode())
			raw, err := c.transport.Fetch(ctx, rawURL, params)
			if err != nil {
				yield(nil, fmt.Errorf("fetch contents summary: %w", err))
				return
			}

			var links pageLinks
			if err := json.Unmarshal(raw, &links); err != nil {
				yield(nil, fmt.Errorf("%w: contents summary: %v", domain.ErrMalformedResponse, err))
				return
			}

			if !yield(raw, nil) {
				return
			}

			if links.Links.Next == "" {
				return
			}

			// The continuation link already carries the query string.
			rawURL = connectors.URIJoin(c.baseURL, links.Links.Next)
			params = nil
		}
	}
}

// HistoricalContent fetches one version of a content item.
func (c *Client) HistoricalContent(ctx context.Context, contentID string, version int) ([]byte, error) {
	params := url.Values{
		ParamVersion: {strconv.Itoa(version)},
		ParamStatus:  {StatusHistorical},
		ParamExpand:  {strings.Join(versionExpand, ",")},
	}
	rawURL := c.resourceURL(ResourceContent, url.PathEscape(contentID))

	logger.Debug("Confluence client requests: %s params: %s", rawURL, params.Encode())
	raw, err := c.transport.Fetch(ctx, rawURL, params)
	if err != nil {
		return nil, fmt.Errorf("fetch content %s version %d: %w", contentID, version, err)
	}
	return raw, nil
}

func (c *Client) resourceURL(parts ...string) string {
	return connectors.URIJoin(append([]string{c.baseURL, APIPath}, parts...)...)
}
