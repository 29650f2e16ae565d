package confluence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

func TestParseContentsSummary(t *testing.T) {
	t.Run("results with ancestors", func(t *testing.T) {
		raw := `{"results":[
			{"id":"1","_links":{"webui":"/display/A/1"},"ancestors":[{"id":"9","_links":{"webui":"/display/A/9"}}]},
			{"id":2,"_links":{"webui":"/display/A/2"},"ancestors":[]},
			{"id":"3","_links":{"webui":"/display/A/3"}}
		],"_links":{}}`

		summaries, err := ParseContentsSummary([]byte(raw))
		require.NoError(t, err)
		require.Len(t, summaries, 3)

		assert.Equal(t, "1", summaries[0].ID)
		assert.Equal(t, "/display/A/1", summaries[0].WebUIPath)
		assert.Equal(t, []domain.Ancestor{{WebUIPath: "/display/A/9"}}, summaries[0].Ancestors)

		assert.Equal(t, "2", summaries[1].ID)
		assert.NotNil(t, summaries[1].Ancestors)
		assert.Empty(t, summaries[1].Ancestors)

		assert.Nil(t, summaries[2].Ancestors)
	})

	t.Run("empty page", func(t *testing.T) {
		summaries, err := ParseContentsSummary([]byte(`{"results":[],"_links":{}}`))
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, raw := range []string{`not json`, `{"_links":{}}`, `{"results":[{"_links":{}}]}`} {
			_, err := ParseContentsSummary([]byte(raw))
			assert.ErrorIs(t, err, domain.ErrMalformedResponse, raw)
		}
	})

	t.Run("missing web UI link", func(t *testing.T) {
		for _, raw := range []string{
			`{"results":[{"id":"1"}]}`,
			`{"results":[{"id":"1","_links":{}}]}`,
			`{"results":[{"id":"1","_links":{"webui":"/display/A/1"},"ancestors":[{"id":"9"}]}]}`,
		} {
			summaries, err := ParseContentsSummary([]byte(raw))
			assert.ErrorIs(t, err, domain.ErrMalformedResponse, raw)
			assert.Nil(t, summaries, raw)
		}
	})
}

func TestSummaries(t *testing.T) {
	cp := domain.ResolveCheckpoint(nil)

	t.Run("follows continuation links across pages", func(t *testing.T) {
		transport := newFakeTransport()
		next1 := "/rest/api/content/search?cql=x&limit=2&start=2"
		next2 := "/rest/api/content/search?cql=x&limit=2&start=4"
		transport.on(searchURL(), searchParams(cp, 2, false), summaryPage(next1, "1", "2"))
		transport.on(testBaseURL+next1, nil, summaryPage(next2, "3", "4"))
		transport.on(testBaseURL+next2, nil, summaryPage("", "5"))

		client := NewClient(testBaseURL, transport, false, 2)

		var ids []string
		for s, err := range Summaries(context.Background(), client, cp) {
			require.NoError(t, err)
			ids = append(ids, s.ID)
		}

		assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids)
		assert.Len(t, transport.Calls(), 3)
	})

	t.Run("start offset applies to the first page only", func(t *testing.T) {
		transport := newFakeTransport()
		params := searchParams(cp, 2, false)
		params.Set("start", "400")
		next := "/rest/api/content/search?cql=x&limit=2&start=402"
		transport.on(searchURL(), params, summaryPage(next, "401", "402"))
		transport.on(testBaseURL+next, nil, summaryPage("", "403"))

		client := NewClient(testBaseURL, transport, false, 2)
		client.SetStart(400)

		var ids []string
		for s, err := range Summaries(context.Background(), client, cp) {
			require.NoError(t, err)
			ids = append(ids, s.ID)
		}

		assert.Equal(t, []string{"401", "402", "403"}, ids)
		assert.Equal(t, []string{requestKey(searchURL(), params), testBaseURL + next}, transport.Calls())
	})

	t.Run("query is truncated to minutes", func(t *testing.T) {
		from := time.Date(2016, 7, 8, 11, 14, 59, 0, time.UTC)
		cp := domain.ResolveCheckpoint(&from)

		transport := newFakeTransport()
		params := searchParams(cp, DefaultMaxContents, true)
		assert.Equal(t, "lastModified>='2016-07-08 11:14' order by lastModified", params.Get("cql"))
		transport.on(searchURL(), params, summaryPage(""))

		client := NewClient(testBaseURL, transport, true, 0)
		for _, err := range Summaries(context.Background(), client, cp) {
			require.NoError(t, err)
		}
		assert.Equal(t, []string{requestKey(searchURL(), params)}, transport.Calls())
	})

	t.Run("failed page is fatal", func(t *testing.T) {
		transport := newFakeTransport()
		transport.onStatus(searchURL(), searchParams(cp, DefaultMaxContents, false), 401)

		client := NewClient(testBaseURL, transport, false, DefaultMaxContents)

		var errs []error
		for _, err := range Summaries(context.Background(), client, cp) {
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], domain.ErrAuthRequired)
	})

	t.Run("stops when consumer stops", func(t *testing.T) {
		transport := newFakeTransport()
		next := "/rest/api/content/search?start=2"
		transport.on(searchURL(), searchParams(cp, DefaultMaxContents, false), summaryPage(next, "1", "2"))

		client := NewClient(testBaseURL, transport, false, DefaultMaxContents)
		for range Summaries(context.Background(), client, cp) {
			break
		}
		assert.Len(t, transport.Calls(), 1)
	})
}
