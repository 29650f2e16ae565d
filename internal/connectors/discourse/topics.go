package discourse

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"github.com/custodia-labs/harvest/internal/connectors"
	"github.com/custodia-labs/harvest/internal/core/domain"
)

// TopicRef is a topic entry of the latest topics list.
type TopicRef struct {
	ID           int64
	LastPostedAt time.Time
}

type topicListJSON struct {
	TopicList *struct {
		Topics *[]struct {
			ID           int64  `json:"id"`
			LastPostedAt string `json:"last_posted_at"`
			BumpedAt     string `json:"bumped_at"`
		} `json:"topics"`
	} `json:"topic_list"`
}

// ParseTopicList parses a page of the latest topics list. Topics without a
// last post time fall back to their bump time.
func ParseTopicList(raw []byte) ([]TopicRef, error) {
	var page topicListJSON
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("%w: topic list: %v", domain.ErrMalformedResponse, err)
	}
	if page.TopicList == nil || page.TopicList.Topics == nil {
		return nil, fmt.Errorf("%w: topic list has no topics", domain.ErrMalformedResponse)
	}

	refs := make([]TopicRef, 0, len(*page.TopicList.Topics))
	for _, t := range *page.TopicList.Topics {
		when := t.LastPostedAt
		if when == "" {
			when = t.BumpedAt
		}
		at, err := connectors.ParseTime(when)
		if err != nil {
			return nil, fmt.Errorf("%w: topic %d: %v", domain.ErrMalformedResponse, t.ID, err)
		}
		refs = append(refs, TopicRef{ID: t.ID, LastPostedAt: at})
	}
	return refs, nil
}

// Topics lazily yields the topics with a post at or after the checkpoint.
func Topics(ctx context.Context, client *Client, checkpoint domain.Checkpoint) iter.Seq2[TopicRef, error] {
	return func(yield func(TopicRef, error) bool) {
		for raw, err := range client.Latest(ctx) {
			if err != nil {
				yield(TopicRef{}, err)
				return
			}
			refs, err := ParseTopicList(raw)
			if err != nil {
				yield(TopicRef{}, err)
				return
			}
			for _, ref := range refs {
				if !checkpoint.Admits(ref.LastPostedAt) {
					continue
				}
				if !yield(ref, nil) {
					return
				}
			}
		}
	}
}
