package confluence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

func collectVersions(t *testing.T, client *Client, id string, cp domain.Checkpoint) ([]int, error) {
	t.Helper()
	var numbers []int
	for v, err := range WalkVersions(context.Background(), client, id, cp) {
		if err != nil {
			return numbers, err
		}
		assert.Equal(t, id, v.ContentID)
		numbers = append(numbers, v.Number)
	}
	return numbers, nil
}

func TestParseHistoricalContent(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		raw := versionBody("28979", 2, time.Date(2016, 7, 8, 11, 14, 11, 0, time.UTC), true)

		v, err := ParseHistoricalContent([]byte(raw))
		require.NoError(t, err)

		assert.Equal(t, "28979", v.ContentID)
		assert.Equal(t, 2, v.Number)
		assert.True(t, v.Latest)
		assert.Equal(t, 1467976451.0, domain.EpochSeconds(v.UpdatedAt))
		assert.JSONEq(t, raw, string(v.Payload))
	})

	t.Run("malformed", func(t *testing.T) {
		tests := map[string]string{
			"not json":       `[`,
			"missing id":     `{"version":{"number":1,"when":"2016-07-08T11:14:11.000Z"},"history":{"latest":true}}`,
			"missing number": `{"id":"1","version":{"when":"2016-07-08T11:14:11.000Z"},"history":{"latest":true}}`,
			"missing latest": `{"id":"1","version":{"number":1,"when":"2016-07-08T11:14:11.000Z"},"history":{}}`,
			"bad date":       `{"id":"1","version":{"number":1,"when":"yesterday"},"history":{"latest":true}}`,
		}
		for name, raw := range tests {
			t.Run(name, func(t *testing.T) {
				_, err := ParseHistoricalContent([]byte(raw))
				assert.ErrorIs(t, err, domain.ErrMalformedResponse)
			})
		}
	})
}

func TestWalkVersions(t *testing.T) {
	full := domain.ResolveCheckpoint(nil)

	t.Run("walks until latest", func(t *testing.T) {
		transport := newFakeTransport()
		transport.history("1", day(1), day(2), day(3))
		client := NewClient(testBaseURL, transport, false, 0)

		numbers, err := collectVersions(t, client, "1", full)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, numbers)
		assert.Len(t, transport.Calls(), 3)
	})

	t.Run("not found at version 1 yields nothing", func(t *testing.T) {
		transport := newFakeTransport()
		transport.onStatus(contentURL("1"), versionParams(1), 404)
		client := NewClient(testBaseURL, transport, false, 0)

		numbers, err := collectVersions(t, client, "1", full)
		require.NoError(t, err)
		assert.Empty(t, numbers)
	})

	t.Run("server error mid history keeps earlier versions", func(t *testing.T) {
		transport := newFakeTransport()
		for n := 1; n <= 4; n++ {
			transport.on(contentURL("1"), versionParams(n), versionBody("1", n, day(n), false))
		}
		transport.onStatus(contentURL("1"), versionParams(5), 500)
		client := NewClient(testBaseURL, transport, false, 0)

		numbers, err := collectVersions(t, client, "1", full)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4}, numbers)
	})

	t.Run("versions before the checkpoint are fetched but skipped", func(t *testing.T) {
		transport := newFakeTransport()
		transport.history("1", day(1), day(5), day(9))
		client := NewClient(testBaseURL, transport, false, 0)

		from := day(5)
		numbers, err := collectVersions(t, client, "1", domain.ResolveCheckpoint(&from))
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3}, numbers)
		assert.Len(t, transport.Calls(), 3)
	})

	t.Run("latest before the checkpoint yields nothing", func(t *testing.T) {
		transport := newFakeTransport()
		transport.history("1", day(1), day(2))
		client := NewClient(testBaseURL, transport, false, 0)

		from := day(20)
		numbers, err := collectVersions(t, client, "1", domain.ResolveCheckpoint(&from))
		require.NoError(t, err)
		assert.Empty(t, numbers)
		assert.Len(t, transport.Calls(), 2)
	})

	t.Run("checkpoint keeps sub-minute resolution", func(t *testing.T) {
		transport := newFakeTransport()
		at := time.Date(2016, 7, 8, 11, 14, 11, 0, time.UTC)
		transport.history("1", at.Add(-time.Second), at)
		client := NewClient(testBaseURL, transport, false, 0)

		numbers, err := collectVersions(t, client, "1", domain.ResolveCheckpoint(&at))
		require.NoError(t, err)
		assert.Equal(t, []int{2}, numbers)
	})

	t.Run("unauthorized is fatal", func(t *testing.T) {
		transport := newFakeTransport()
		transport.history("1", day(1), day(2))
		transport.onStatus(contentURL("1"), versionParams(2), 401)
		client := NewClient(testBaseURL, transport, false, 0)

		numbers, err := collectVersions(t, client, "1", full)
		assert.Equal(t, []int{1}, numbers)
		assert.ErrorIs(t, err, domain.ErrAuthRequired)
	})

	t.Run("unavailable server is fatal", func(t *testing.T) {
		transport := newFakeTransport()
		transport.onStatus(contentURL("1"), versionParams(1), 503)
		client := NewClient(testBaseURL, transport, false, 0)

		_, err := collectVersions(t, client, "1", full)
		code, ok := domain.StatusCode(err)
		require.True(t, ok)
		assert.Equal(t, 503, code)
	})

	t.Run("network failure is fatal", func(t *testing.T) {
		netErr := errors.New("connection reset")
		transport := newFakeTransport()
		transport.onError(contentURL("1"), versionParams(1), netErr)
		client := NewClient(testBaseURL, transport, false, 0)

		_, err := collectVersions(t, client, "1", full)
		assert.ErrorIs(t, err, netErr)
	})

	t.Run("malformed version is fatal", func(t *testing.T) {
		transport := newFakeTransport()
		transport.on(contentURL("1"), versionParams(1), `{"id":"1"}`)
		client := NewClient(testBaseURL, transport, false, 0)

		_, err := collectVersions(t, client, "1", full)
		assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	})
}
