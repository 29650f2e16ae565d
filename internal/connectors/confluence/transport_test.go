package confluence

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/harvest/internal/core/domain"
)

const testBaseURL = "http://example.com"

type fakeResponse struct {
	body   string
	status int
	err    error
}

// fakeTransport serves canned responses keyed by URL and encoded params and
// records every request it receives.
type fakeTransport struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     []string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{responses: make(map[string]fakeResponse)}
}

func requestKey(rawURL string, params url.Values) string {
	if len(params) == 0 {
		return rawURL
	}
	return rawURL + "?" + params.Encode()
}

func (f *fakeTransport) on(rawURL string, params url.Values, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[requestKey(rawURL, params)] = fakeResponse{body: body}
}

func (f *fakeTransport) onStatus(rawURL string, params url.Values, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[requestKey(rawURL, params)] = fakeResponse{status: status}
}

func (f *fakeTransport) onError(rawURL string, params url.Values, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[requestKey(rawURL, params)] = fakeResponse{err: err}
}

func (f *fakeTransport) Fetch(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := requestKey(rawURL, params)

	f.mu.Lock()
	f.calls = append(f.calls, key)
	resp, ok := f.responses[key]
	f.mu.Unlock()

	switch {
	case !ok:
		return nil, fmt.Errorf("unexpected request %s", key)
	case resp.err != nil:
		return nil, resp.err
	case resp.status >= 400:
		return nil, domain.NewStatusError(resp.status, rawURL, "")
	}
	return []byte(resp.body), nil
}

func (f *fakeTransport) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeTransport) countPrefix(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Request builders

func searchURL() string {
	return testBaseURL + "/rest/api/content/search"
}

func contentURL(id string) string {
	return testBaseURL + "/rest/api/content/" + id
}

func searchParams(cp domain.Checkpoint, limit int, ancestors bool) url.Values {
	params := url.Values{
		"cql":   {"lastModified>='" + cp.QueryValue() + "' order by lastModified"},
		"limit": {strconv.Itoa(limit)},
	}
	if ancestors {
		params.Set("expand", "ancestors")
	}
	return params
}

func versionParams(n int) url.Values {
	return url.Values{
		"version": {strconv.Itoa(n)},
		"status":  {"historical"},
		"expand":  {"body.storage,history,version"},
	}
}

// Response builders

func summaryPage(next string, ids ...string) string {
	results := make([]string, 0, len(ids))
	for _, id := range ids {
		results = append(results, fmt.Sprintf(`{"id":%q,"type":"page","_links":{"webui":"/display/SPC/%s"}}`, id, id))
	}
	links := `{}`
	if next != "" {
		links = fmt.Sprintf(`{"next":%q}`, next)
	}
	return fmt.Sprintf(`{"results":[%s],"size":%d,"_links":%s}`, strings.Join(results, ","), len(ids), links)
}

func versionBody(id string, n int, when time.Time, latest bool) string {
	return fmt.Sprintf(
		`{"id":%q,"type":"page","title":"Page %s","version":{"number":%d,"when":%q},"history":{"latest":%t},"body":{"storage":{"value":"<p>v%d</p>"}}}`,
		id, id, n, when.UTC().Format("2006-01-02T15:04:05.000Z"), latest, n)
}

// history registers the versions of a content item, one per date.
// The last date is flagged latest.
func (f *fakeTransport) history(id string, dates ...time.Time) {
	for i, d := range dates {
		f.on(contentURL(id), versionParams(i+1), versionBody(id, i+1, d, i == len(dates)-1))
	}
}

func day(d int) time.Time {
	return time.Date(2016, time.July, d, 10, 0, 0, 0, time.UTC)
}

func newTestHarvester(t *testing.T, transport *fakeTransport, workers int) *Harvester {
	t.Helper()
	h := New(&Config{URL: testBaseURL, MaxContents: DefaultMaxContents, Workers: workers}, transport)
	h.now = func() time.Time { return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC) }
	return h
}

