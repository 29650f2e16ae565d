package confluence

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

const (
	// DefaultMaxContents is the page size cap of summary requests.
	DefaultMaxContents = 200

	// DefaultWorkers walks one content item at a time.
	DefaultWorkers = 1
)

// Config holds the parsed configuration for a Confluence source.
type Config struct {
	// URL is the server base URL. It is also the origin of the envelopes.
	URL string

	// AddAncestors resolves the URLs of ancestor pages.
	// Default: false
	AddAncestors bool

	// MaxContents caps the number of summaries per page.
	// Default: 200
	MaxContents int

	// Start skips the first results of the summary search.
	// Default: 0
	Start int

	// Workers is the number of version walks run concurrently.
	// Default: 1 (sequential)
	Workers int

	// Tag labels the envelopes. Default: the origin.
	Tag string
}

// ParseConfig parses a source's config map into a Config struct.
// Only "url" is required.
func ParseConfig(source domain.Source) (*Config, error) {
	cfg := &Config{
		MaxContents: DefaultMaxContents,
		Workers:     DefaultWorkers,
	}

	cfg.URL = strings.TrimRight(strings.TrimSpace(source.Config["url"]), "/")
	if cfg.URL == "" {
		return nil, ErrConfigMissingURL
	}

	if v, ok := source.Config["add_ancestors"]; ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, ErrConfigInvalidAncestors
		}
		cfg.AddAncestors = b
	}

	if v, ok := source.Config["max_contents"]; ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return nil, ErrConfigInvalidMaxContents
		}
		cfg.MaxContents = n
	}

	if v, ok := source.Config["start"]; ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return nil, ErrConfigInvalidStart
		}
		cfg.Start = n
	}

	if v, ok := source.Config["workers"]; ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return nil, ErrConfigInvalidWorkers
		}
		cfg.Workers = n
	}

	cfg.Tag = strings.TrimSpace(source.Config["tag"])

	return cfg, nil
}
