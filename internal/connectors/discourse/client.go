package discourse

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strconv"

	"github.com/custodia-labs/harvest/internal/connectors"
	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/core/ports/driven"
	"github.com/custodia-labs/harvest/internal/logger"
)

const (
	pathLatest   = "latest.json"
	pathTopic    = "t"
	pathPost     = "posts"
	paramPage    = "page"
	paramPerPage = "per_page"
)

// Client issues topic and post requests against a Discourse board.
// Credentials are carried by the transport.
type Client struct {
	baseURL   string
	transport driven.Transport
	maxTopics int
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, transport driven.Transport, maxTopics int) *Client {
	if maxTopics <= 0 {
		maxTopics = DefaultMaxTopics
	}
	return &Client{baseURL: baseURL, transport: transport, maxTopics: maxTopics}
}

// BaseURL returns the board base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type topicListLinks struct {
	TopicList *struct {
		MoreTopicsURL string `json:"more_topics_url"`
	} `json:"topic_list"`
}

// Latest lazily yields the raw pages of the latest topics list. The first
// page is requested without a page number, then pages 1, 2... while the
// server advertises more topics.
func (c *Client) Latest(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		rawURL := connectors.URIJoin(c.baseURL, pathLatest)
		for page := 0; ; page++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			params := url.Values{paramPerPage: {strconv.Itoa(c.maxTopics)}}
			if page > 0 {
				params.Set(paramPage, strconv.Itoa(page))
			}

			logger.Debug("Discourse client requests: %s params: %s", rawURL, params.Encode())
			raw, err := c.transport.Fetch(ctx, rawURL, params)
			if err != nil {
				yield(nil, fmt.Errorf("fetch latest topics: %w", err))
				return
			}

			var links topicListLinks
			if err := json.Unmarshal(raw, &links); err != nil || links.TopicList == nil {
				yield(nil, fmt.Errorf("%w: latest topics has no topic list", domain.ErrMalformedResponse))
				return
			}

			if !yield(raw, nil) {
				return
			}
			if links.TopicList.MoreTopicsURL == "" {
				return
			}
		}
	}
}

// Topic fetches a topic document with its first chunk of posts.
func (c *Client) Topic(ctx context.Context, id int64) ([]byte, error) {
	return c.item(ctx, pathTopic, id)
}

// Post fetches a single post.
func (c *Client) Post(ctx context.Context, id int64) ([]byte, error) {
	return c.item(ctx, pathPost, id)
}

func (c *Client) item(ctx context.Context, kind string, id int64) ([]byte, error) {
	rawURL := connectors.URIJoin(c.baseURL, kind, strconv.FormatInt(id, 10)+".json")

	logger.Debug("Discourse client requests: %s", rawURL)
	raw, err := c.transport.Fetch(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %d: %w", kind, id, err)
	}
	return raw, nil
}
