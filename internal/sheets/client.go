// Package sheets is the read-only shim over the spreadsheet values API.
// Cell data passes through untouched; any reshaping is positional unpacking
// of known fixed cells in the service layer.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/auditcloud/findings-api/internal/config"
	"github.com/auditcloud/findings-api/internal/domain"
	"github.com/auditcloud/findings-api/internal/httpclient"
	"github.com/auditcloud/findings-api/internal/logger"
)

// Client reads fixed cell ranges from spreadsheet documents.
type Client struct {
	httpClient *http.Client
	tokens     *tokenSource
	cfg        *config.SheetsConfig
	logger     logger.Logger
}

// NewClient creates a sheets client, loading the service-account key file
// named in the configuration.
func NewClient(cfg *config.SheetsConfig, log logger.Logger) (*Client, error) {
	httpClient := httpclient.New(cfg.Timeout)

	tokens, err := newTokenSource(cfg.CredentialsFile, cfg.TokenURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("sheets auth: %w", err)
	}

	return &Client{
		httpClient: httpClient,
		tokens:     tokens,
		cfg:        cfg,
		logger:     log,
	}, nil
}

// ReadRange returns the cell values of one A1-notation range.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, rangeSpec string) ([][]any, error) {
	reqURL := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		c.cfg.BaseURL, url.PathEscape(spreadsheetID), url.PathEscape(rangeSpec))

	var body valueRange
	if err := c.get(ctx, reqURL, &body); err != nil {
		return nil, err
	}
	return body.Values, nil
}

// ReadRanges returns the cell values of several ranges in one call, in
// request order.
func (c *Client) ReadRanges(ctx context.Context, spreadsheetID string, rangeSpecs []string) ([][][]any, error) {
	query := url.Values{}
	for _, r := range rangeSpecs {
		query.Add("ranges", r)
	}
	reqURL := fmt.Sprintf("%s/v4/spreadsheets/%s/values:batchGet?%s",
		c.cfg.BaseURL, url.PathEscape(spreadsheetID), query.Encode())

	var body struct {
		ValueRanges []valueRange `json:"valueRanges"`
	}
	if err := c.get(ctx, reqURL, &body); err != nil {
		return nil, err
	}

	values := make([][][]any, 0, len(body.ValueRanges))
	for _, vr := range body.ValueRanges {
		values = append(values, vr.Values)
	}
	return values, nil
}

// valueRange is the values API wire format for one range.
type valueRange struct {
	Range  string  `json:"range"`
	Values [][]any `json:"values"`
}

// get performs an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, reqURL string, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build sheets request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: sheet service returned status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
		return fmt.Errorf("%w: decode sheets response: %v", domain.ErrSourceUnavailable, decodeErr)
	}
	return nil
}
