package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/core/ports/driven"
	"github.com/custodia-labs/harvest/internal/logger"
	"github.com/custodia-labs/harvest/internal/metrics"
)

// maxMessageLen bounds the response body excerpt kept in a StatusError.
const maxMessageLen = 200

// Ensure Client implements the interface.
var _ driven.Transport = (*Client)(nil)

// Client is an HTTP transport with per-host throttling.
type Client struct {
	http   *http.Client
	config Config

	mu    sync.Mutex
	hosts map[string]*hostGate
}

// hostGate throttles and caps the requests to one host.
type hostGate struct {
	limiter  *RateLimiter
	inFlight *semaphore.Weighted
}

// NewClient creates an HTTP transport. A token without a username is sent
// as an OAuth2 bearer token.
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()

	var hc *http.Client
	if cfg.Token != "" && cfg.Username == "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		hc = oauth2.NewClient(context.Background(), ts)
	} else {
		hc = &http.Client{}
	}
	hc.Timeout = cfg.Timeout

	return &Client{
		http:   hc,
		config: cfg,
		hosts:  make(map[string]*hostGate),
	}
}

// Fetch performs a GET request on rawURL with params merged into its query
// string and returns the response body.
func (c *Client) Fetch(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: url %q: %v", domain.ErrInvalidInput, rawURL, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			q[k] = vs
		}
		u.RawQuery = q.Encode()
	}
	target := u.String()
	gate := c.gate(u.Host)

	for attempt := 0; ; attempt++ {
		body, resp, err := c.do(ctx, gate, target)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 400 {
			return body, nil
		}

		statusErr := domain.NewStatusError(resp.StatusCode, target, excerpt(body))
		if !retryable(resp.StatusCode) || attempt >= c.config.MaxRetries {
			return nil, statusErr
		}

		delay := RetryAfter(resp)
		if delay == 0 {
			delay = c.config.RetryDelay << attempt
		}
		logger.Warn("Request to %s failed with %d, retrying in %s", target, resp.StatusCode, delay)
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// do performs a single request through the host gate.
func (c *Client) do(ctx context.Context, gate *hostGate, target string) ([]byte, *http.Response, error) {
	if err := gate.inFlight.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}
	defer gate.inFlight.Release(1)

	if err := gate.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRequest(target, 0, time.Since(start))
		return nil, nil, fmt.Errorf("request %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.ObserveRequest(target, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, nil, fmt.Errorf("read response %s: %w", target, err)
	}

	gate.limiter.UpdateFromResponse(resp)
	return body, resp, nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	if c.config.Username != "" && c.config.Token != "" {
		req.SetBasicAuth(c.config.Username, c.config.Token)
	}
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
}

func (c *Client) gate(host string) *hostGate {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.hosts[host]
	if !ok {
		g = &hostGate{
			limiter:  NewRateLimiter(c.config.Rate, c.config.Burst),
			inFlight: semaphore.NewWeighted(c.config.MaxInFlight),
		}
		c.hosts[host] = g
	}
	return g
}

func retryable(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxMessageLen {
		s = s[:maxMessageLen] + "..."
	}
	return s
}
