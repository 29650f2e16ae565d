package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Post is a single message of a discussion board topic.
type Post struct {
	ID         int64           `json:"id"`
	TopicID    int64           `json:"topic_id"`
	CategoryID int64           `json:"category_id"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Identity implements Item.
func (p Post) Identity() string {
	return strconv.FormatInt(p.ID, 10)
}

// UpdatedOn implements Item.
func (p Post) UpdatedOn() time.Time {
	return p.UpdatedAt
}
