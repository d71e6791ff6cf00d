// Package render talks to the browser-automation crawling backend used for
// JavaScript-heavy sites. The backend runs its own traversal (BFS with a
// page budget) and returns rendered page records; match extraction is
// applied here exactly as for directly fetched pages.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"AperoScanner/internal/domain"
	"AperoScanner/internal/ports"
)

// Client is an HTTP client for the rendering backend.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.PageCrawler = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

// CrawlPages submits a crawl request and returns the rendered page records.
func (c *Client) CrawlPages(ctx context.Context, req domain.PageCrawlRequest) ([]domain.PageRecord, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("render backend endpoint is not configured")
	}

	var records []domain.PageRecord
	if err := c.post(ctx, "/crawl", req, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
