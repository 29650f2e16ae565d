package confluence

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

type versionJSON struct {
	ID      flexibleID `json:"id"`
	Version *struct {
		Number int    `json:"number"`
		When   string `json:"when"`
	} `json:"version"`
	History *struct {
		Latest *bool `json:"latest"`
	} `json:"history"`
}

// ParseHistoricalContent decodes one version response. The id, version
// number, version date and latest flag are required; the full response is
// kept as the payload.
func ParseHistoricalContent(raw []byte) (domain.HistoricalVersion, error) {
	var v versionJSON
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.HistoricalVersion{}, fmt.Errorf("%w: historical content: %v", domain.ErrMalformedResponse, err)
	}

	switch {
	case v.ID == "":
		return domain.HistoricalVersion{}, fmt.Errorf("%w: historical content has no id", domain.ErrMalformedResponse)
	case v.Version == nil || v.Version.Number < 1:
		return domain.HistoricalVersion{}, fmt.Errorf("%w: historical content %s has no version number", domain.ErrMalformedResponse, v.ID)
	case v.History == nil || v.History.Latest == nil:
		return domain.HistoricalVersion{}, fmt.Errorf("%w: historical content %s has no latest flag", domain.ErrMalformedResponse, v.ID)
	}

	when, err := connectors.ParseTime(v.Version.When)
	if err != nil {
		return domain.HistoricalVersion{}, fmt.Errorf("%w: historical content %s: %v", domain.ErrMalformedResponse, v.ID, err)
	}

	return domain.HistoricalVersion{
		ContentID: string(v.ID),
		Number:    v.Version.Number,
		UpdatedAt: when,
		Latest:    *v.History.Latest,
		Payload:   json.RawMessage(raw),
	}, nil
}

// WalkVersions lazily walks the history of a content item from version 1
// until the version flagged as latest, yielding the versions updated at or
// after the checkpoint. Older versions are fetched and discarded.
//
// An unreachable item ends the walk silently. Any other failure is yielded
// once and ends the sequence.
func WalkVersions(ctx context.Context, client *Client, contentID string, checkpoint domain.Checkpoint) iter.Seq2[domain.HistoricalVersion, error] {
	return func(yield func(domain.HistoricalVersion, error) bool) {
		for number := 1; ; number++ {
			if err := ctx.Err(); err != nil {
				yield(domain.HistoricalVersion{}, err)
				return
			}

			raw, err := client.HistoricalContent(ctx, contentID, number)
			if err != nil {
				if IsItemUnreachable(err) {
					logger.Warn("Error retrieving version %d of content %s: %v", number, contentID, err)
					metrics.ObserveItemUnreachable(BackendName)
					return
				}
				yield(domain.HistoricalVersion{}, err)
				return
			}

			v, err := ParseHistoricalContent(raw)
			if err != nil {
				yield(domain.HistoricalVersion{}, err)
				return
			}

			if checkpoint.Admits(v.UpdatedAt) {
				if !yield(v, nil) {
					return
				}
			} else {
				logger.Debug("Skipping version %d of content %s: updated %s before %s",
					v.Number, contentID, v.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"), checkpoint)
				metrics.ObserveVersionSkipped(BackendName)
			}

			if v.Latest {
				return
			}
		}
	}
}
