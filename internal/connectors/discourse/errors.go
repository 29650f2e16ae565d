package discourse

import "errors"

var (
	// ErrConfigMissingURL indicates the board URL was not configured.
	ErrConfigMissingURL = errors.New("discourse: url is required")

	// ErrConfigInvalidMaxTopics indicates max_topics is not a positive integer.
	ErrConfigInvalidMaxTopics = errors.New("discourse: max_topics must be a positive integer")
)
