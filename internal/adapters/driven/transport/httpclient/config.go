package httpclient

import "time"

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRate is the default proactive throttle (requests per second per host).
	DefaultRate = 10.0

	// DefaultBurst is the default token bucket size.
	DefaultBurst = 1

	// DefaultMaxInFlight is the default cap of concurrent requests per host.
	DefaultMaxInFlight = 4

	// MaxRetries is the maximum number of retries for throttled or gateway failures.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = time.Second

	// DefaultUserAgent identifies the harvester to remote servers.
	DefaultUserAgent = "harvest/1.0"
)

// Config configures a Client.
type Config struct {
	// Timeout bounds each request.
	Timeout time.Duration

	// Rate is the proactive throttle in requests per second per host.
	// Zero or negative disables throttling.
	Rate float64

	// Burst is the token bucket size.
	Burst int

	// MaxInFlight caps concurrent requests per host.
	MaxInFlight int64

	// MaxRetries bounds the retries of 429 and gateway failures.
	MaxRetries int

	// RetryDelay is the first backoff delay; it doubles on every retry.
	RetryDelay time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// Token authenticates requests. Sent as a bearer token, or as the
	// basic auth password when Username is set.
	Token string

	// Username switches token authentication to basic auth.
	Username string

	// Headers are added to every request (e.g. Api-Key for Discourse).
	Headers map[string]string
}

// DefaultConfig returns the default transport configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:     DefaultTimeout,
		Rate:        DefaultRate,
		Burst:       DefaultBurst,
		MaxInFlight: DefaultMaxInFlight,
		MaxRetries:  MaxRetries,
		RetryDelay:  RetryDelay,
		UserAgent:   DefaultUserAgent,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Burst <= 0 {
		c.Burst = d.Burst
	}
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = d.MaxInFlight
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	return c
}
