package discourse

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/custodia-labs/harvest/internal/connectors"
	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/logger"
	"github.com/custodia-labs/harvest/internal/metrics"
)

// Topic is a topic document: its category, the embedded chunk of posts and
// the ids of every post in the topic.
type Topic struct {
	ID         int64
	CategoryID int64
	ChunkSize  int
	Posts      []json.RawMessage
	Stream     []int64
}

type topicJSON struct {
	ID         int64  `json:"id"`
	CategoryID *int64 `json:"category_id"`
	ChunkSize  *int   `json:"chunk_size"`
	PostStream *struct {
		Posts  []json.RawMessage `json:"posts"`
		Stream []int64           `json:"stream"`
	} `json:"post_stream"`
}

// ParseTopic parses a topic document. Private messages carry no category
// and are reported with category 0.
func ParseTopic(raw []byte) (Topic, error) {
	var t topicJSON
	if err := json.Unmarshal(raw, &t); err != nil {
		return Topic{}, fmt.Errorf("%w: topic: %v", domain.ErrMalformedResponse, err)
	}
	if t.ChunkSize == nil || t.PostStream == nil {
		return Topic{}, fmt.Errorf("%w: topic %d has no post stream", domain.ErrMalformedResponse, t.ID)
	}

	topic := Topic{
		ID:        t.ID,
		ChunkSize: *t.ChunkSize,
		Posts:     t.PostStream.Posts,
		Stream:    t.PostStream.Stream,
	}
	if t.CategoryID != nil {
		topic.CategoryID = *t.CategoryID
	}
	return topic, nil
}

type postJSON struct {
	ID        int64  `json:"id"`
	TopicID   int64  `json:"topic_id"`
	UpdatedAt string `json:"updated_at"`
}

// ParsePost parses a post and annotates it with the category of its topic.
func ParsePost(raw []byte, categoryID int64) (domain.Post, error) {
	var p postJSON
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Post{}, fmt.Errorf("%w: post: %v", domain.ErrMalformedResponse, err)
	}
	if p.ID == 0 {
		return domain.Post{}, fmt.Errorf("%w: post has no id", domain.ErrMalformedResponse)
	}
	at, err := connectors.ParseTime(p.UpdatedAt)
	if err != nil {
		return domain.Post{}, fmt.Errorf("%w: post %d: %v", domain.ErrMalformedResponse, p.ID, err)
	}
	return domain.Post{
		ID:         p.ID,
		TopicID:    p.TopicID,
		CategoryID: categoryID,
		UpdatedAt:  at,
		Payload:    json.RawMessage(raw),
	}, nil
}

// WalkPosts lazily yields the posts of a topic updated at or after the
// checkpoint. The embedded posts are filtered one by one; the remaining
// posts are fetched newest first until one predates the checkpoint.
//
// An unreachable topic yields nothing; an unreachable post ends the walk of
// its topic. Any other failure is yielded once and ends the sequence.
func WalkPosts(ctx context.Context, client *Client, topicID int64, checkpoint domain.Checkpoint) iter.Seq2[domain.Post, error] {
	return func(yield func(domain.Post, error) bool) {
		raw, err := client.Topic(ctx, topicID)
		if err != nil {
			if connectors.IsItemUnreachable(err) {
				logger.Warn("Error retrieving topic %d: %v", topicID, err)
				metrics.ObserveItemUnreachable(BackendName)
				return
			}
			yield(domain.Post{}, err)
			return
		}

		topic, err := ParseTopic(raw)
		if err != nil {
			yield(domain.Post{}, err)
			return
		}

		for _, rawPost := range topic.Posts {
			post, err := ParsePost(rawPost, topic.CategoryID)
			if err != nil {
				yield(domain.Post{}, err)
				return
			}
			if !checkpoint.Admits(post.UpdatedAt) {
				continue
			}
			if !yield(post, nil) {
				return
			}
		}

		if topic.ChunkSize >= len(topic.Stream) {
			return
		}

		rest := topic.Stream[topic.ChunkSize:]
		for i := len(rest) - 1; i >= 0; i-- {
			if err := ctx.Err(); err != nil {
				yield(domain.Post{}, err)
				return
			}
			raw, err := client.Post(ctx, rest[i])
			if err != nil {
				if connectors.IsItemUnreachable(err) {
					logger.Warn("Error retrieving post %d of topic %d: %v", rest[i], topicID, err)
					metrics.ObserveItemUnreachable(BackendName)
					return
				}
				yield(domain.Post{}, err)
				return
			}
			post, err := ParsePost(raw, topic.CategoryID)
			if err != nil {
				yield(domain.Post{}, err)
				return
			}
			if !checkpoint.Admits(post.UpdatedAt) {
				return
			}
			if !yield(post, nil) {
				return
			}
		}
	}
}
