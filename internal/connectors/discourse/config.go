package discourse

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

// DefaultMaxTopics is the number of topics requested per page.
const DefaultMaxTopics = 100

// Config holds the parsed configuration for a Discourse source.
type Config struct {
	// URL is the board base URL and the origin of the envelopes.
	URL string

	// MaxTopics is the number of topics requested per page.
	MaxTopics int

	// Tag labels the envelopes. Default: the origin.
	Tag string
}

// ParseConfig parses a source's config map into a Config struct.
func ParseConfig(source domain.Source) (*Config, error) {
	cfg := &Config{MaxTopics: DefaultMaxTopics}

	cfg.URL = strings.TrimRight(strings.TrimSpace(source.Config["url"]), "/")
	if cfg.URL == "" {
		return nil, ErrConfigMissingURL
	}

	if v, ok := source.Config["max_topics"]; ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return nil, ErrConfigInvalidMaxTopics
		}
		cfg.MaxTopics = n
	}

	cfg.Tag = strings.TrimSpace(source.Config["tag"])
	return cfg, nil
}
