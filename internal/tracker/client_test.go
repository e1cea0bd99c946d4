package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditcloud/findings-api/internal/config"
	"github.com/auditcloud/findings-api/internal/domain"
	"github.com/auditcloud/findings-api/internal/logger"
)

// fakeTracker serves a fixed issue set through the search API's paging
// protocol.
type fakeTracker struct {
	issues []map[string]any
	// pageFor overrides the slice served for a given startAt when set.
	pageFor func(startAt, maxResults int) []map[string]any
}

func (f *fakeTracker) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
		maxResults, _ := strconv.Atoi(r.URL.Query().Get("maxResults"))

		var page []map[string]any
		if f.pageFor != nil {
			page = f.pageFor(startAt, maxResults)
		} else {
			end := startAt + maxResults
			if end > len(f.issues) {
				end = len(f.issues)
			}
			if startAt < len(f.issues) {
				page = f.issues[startAt:end]
			}
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"startAt":    startAt,
			"maxResults": maxResults,
			"total":      len(f.issues),
			"issues":     page,
		})
	}
}

func makeIssues(n int) []map[string]any {
	issues := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		issues = append(issues, map[string]any{
			"key": fmt.Sprintf("F-%d", i+1),
			"fields": map[string]any{
				"summary":   fmt.Sprintf("finding %d", i+1),
				"issuetype": map[string]any{"name": domain.KindFinding},
				"status":    map[string]any{"name": "Open"},
			},
		})
	}
	return issues
}

func testClient(t *testing.T, serverURL string, pageSize, maxPages int) *Client {
	t.Helper()
	return NewClient(&config.TrackerConfig{
		BaseURL:  serverURL,
		Email:    "svc@example.com",
		APIToken: "token",
		Project:  "FINDINGS",
		PageSize: pageSize,
		MaxPages: maxPages,
		Timeout:  5 * time.Second,
	}, logger.NewNop())
}

func TestSearchAllPaginatesExhaustively(t *testing.T) {
	fake := &fakeTracker{issues: makeIssues(25)}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := testClient(t, server.URL, 10, 50)

	records, err := client.SearchAll(context.Background(), "project = FINDINGS")
	require.NoError(t, err)
	require.Len(t, records, 25)

	// Every record exactly once, in server order.
	seen := make(map[string]bool)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("F-%d", i+1), rec.Key)
		assert.False(t, seen[rec.Key], "duplicate key %s", rec.Key)
		seen[rec.Key] = true
	}
}

func TestSearchAllEmptyResult(t *testing.T) {
	fake := &fakeTracker{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := testClient(t, server.URL, 10, 50)

	records, err := client.SearchAll(context.Background(), "project = FINDINGS")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearchAllToleratesShortPages(t *testing.T) {
	fake := &fakeTracker{issues: makeIssues(5)}
	// Serve at most 2 issues per page regardless of maxResults. The fetch
	// must keep advancing by what it received rather than give up or skip.
	fake.pageFor = func(startAt, _ int) []map[string]any {
		end := startAt + 2
		if end > len(fake.issues) {
			end = len(fake.issues)
		}
		if startAt >= len(fake.issues) {
			return nil
		}
		return fake.issues[startAt:end]
	}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := testClient(t, server.URL, 10, 50)

	records, err := client.SearchAll(context.Background(), "project = FINDINGS")
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestSearchAllStalledPage(t *testing.T) {
	fake := &fakeTracker{issues: makeIssues(5)}
	fake.pageFor = func(_, _ int) []map[string]any { return nil }
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := testClient(t, server.URL, 10, 50)

	records, err := client.SearchAll(context.Background(), "project = FINDINGS")
	assert.ErrorIs(t, err, domain.ErrFetchIncomplete)
	assert.Nil(t, records)
}

func TestSearchAllPageCap(t *testing.T) {
	fake := &fakeTracker{issues: makeIssues(10)}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := testClient(t, server.URL, 2, 3)

	records, err := client.SearchAll(context.Background(), "project = FINDINGS")
	assert.ErrorIs(t, err, domain.ErrFetchIncomplete)
	assert.Nil(t, records)
}

func TestSearchAllServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 10, 50)

	records, err := client.SearchAll(context.Background(), "project = FINDINGS")
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Nil(t, records)
}

func TestSearchAllTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := testClient(t, server.URL, 10, 50)

	_, err := client.SearchAll(context.Background(), "project = FINDINGS")
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestSearchDecodesIssueFields(t *testing.T) {
	fake := &fakeTracker{issues: []map[string]any{
		{
			"key": "F-1",
			"fields": map[string]any{
				"summary":           "access review overdue",
				"issuetype":         map[string]any{"name": domain.KindFinding},
				"status":            map[string]any{"name": "In Progress"},
				"created":           "2024-01-10T09:15:00.000+0000",
				"duedate":           "2024-06-30",
				"parent":            map[string]any{"key": "F-0"},
				"customfield_16447": map[string]any{"value": "2024"},
			},
		},
	}}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := testClient(t, server.URL, 10, 50)

	page, err := client.Search(context.Background(), "project = FINDINGS", 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)

	rec := page.Records[0]
	assert.Equal(t, "F-1", rec.Key)
	assert.Equal(t, domain.KindFinding, rec.Kind)
	assert.Equal(t, "In Progress", rec.Status)
	assert.Equal(t, "access review overdue", rec.Summary)
	assert.Equal(t, "F-0", rec.ParentKey)
	require.NotNil(t, rec.DueDate)
	assert.Equal(t, "2024-06-30", rec.DueDate.Format("2006-01-02"))
	assert.Equal(t, 2024, rec.CreatedAt.Year())
	assert.Equal(t, "2024", rec.Attr("customfield_16447", domain.FallbackUnknown))
}

func TestSearchSendsBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		_ = json.NewEncoder(w).Encode(map[string]any{"total": 0})
	}))
	defer server.Close()

	client := testClient(t, server.URL, 10, 50)

	_, err := client.Search(context.Background(), "project = FINDINGS", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "svc@example.com", gotUser)
	assert.Equal(t, "token", gotPass)
}

func TestPing(t *testing.T) {
	fake := &fakeTracker{issues: makeIssues(1)}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := testClient(t, server.URL, 10, 50)
	assert.NoError(t, client.Ping(context.Background()))

	server.Close()
	assert.Error(t, client.Ping(context.Background()))
}
