// Package tracker is the read-only shim over the remote issue tracker's
// search API. It fetches pages of issues, decodes them into domain records
// at the boundary, and paginates exhaustively.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/auditcloud/findings-api/internal/config"
	"github.com/auditcloud/findings-api/internal/domain"
	"github.com/auditcloud/findings-api/internal/httpclient"
	"github.com/auditcloud/findings-api/internal/logger"
)

const searchPath = "/rest/api/3/search"

// Client talks to the tracker's search endpoint.
type Client struct {
	httpClient *http.Client
	cfg        *config.TrackerConfig
	logger     logger.Logger
}

// Page is one page of search results plus the server-reported total for
// the whole query.
type Page struct {
	Records []domain.Record
	Total   int
}

// NewClient creates a tracker client from configuration.
func NewClient(cfg *config.TrackerConfig, log logger.Logger) *Client {
	return &Client{
		httpClient: httpclient.New(cfg.Timeout),
		cfg:        cfg,
		logger:     log,
	}
}

// Search fetches one page of results for the given query expression.
// Any transport or HTTP failure maps to domain.ErrSourceUnavailable.
func (c *Client) Search(ctx context.Context, jql string, startAt, pageSize int) (*Page, error) {
	reqURL := fmt.Sprintf("%s%s?jql=%s&startAt=%d&maxResults=%d",
		c.cfg.BaseURL, searchPath, url.QueryEscape(jql), startAt, pageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tracker returned status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	var body searchResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", domain.ErrSourceUnavailable, decodeErr)
	}

	records := make([]domain.Record, 0, len(body.Issues))
	for i := range body.Issues {
		records = append(records, decodeIssue(&body.Issues[i]))
	}

	return &Page{Records: records, Total: body.Total}, nil
}

// Ping issues a minimal search to verify the tracker is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Search(ctx, NewJQL(c.cfg.Project).String(), 0, 1)
	return err
}

// searchResponse is the tracker's search API wire format.
type searchResponse struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []issue `json:"issues"`
}

type issue struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

// decodeIssue lifts a raw issue into a domain record. Structured fields are
// extracted here, once, so downstream code never sniffs object shapes; the
// remaining attribute bag is kept for the normalizer.
func decodeIssue(raw *issue) domain.Record {
	rec := domain.Record{
		Key:   raw.Key,
		Attrs: raw.Fields,
	}
	if raw.Fields == nil {
		return rec
	}

	rec.Kind = nestedName(raw.Fields["issuetype"])
	rec.Status = nestedName(raw.Fields["status"])

	if summary, ok := raw.Fields["summary"].(string); ok {
		rec.Summary = summary
	}
	if created, ok := raw.Fields["created"].(string); ok {
		if t, err := parseTimestamp(created); err == nil {
			rec.CreatedAt = t
		}
	}
	if due, ok := raw.Fields["duedate"].(string); ok {
		if t, err := domain.ParseDate(due); err == nil {
			rec.DueDate = &t
		}
	}
	if parent, ok := raw.Fields["parent"].(map[string]any); ok {
		if key, keyOK := parent["key"].(string); keyOK {
			rec.ParentKey = key
		}
	}

	return rec
}

// nestedName extracts the "name" of a {name: ...} field. Missing or
// malformed shapes yield the empty string; the aggregations treat that as
// an unknown value, never as an error.
func nestedName(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	name, _ := obj["name"].(string)
	return name
}

// parseTimestamp handles the tracker's created-at format, falling back to
// RFC 3339.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04:05.000-0700", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
