// Package feed pushes the rendered JSON feed to the downstream publishing
// endpoint.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"AperoScanner/internal/ports"
)

// Uploader POSTs the feed payload with bearer authentication.
type Uploader struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.FeedUploader = (*Uploader)(nil)

// NewUploader builds an uploader for the configured endpoint.
func NewUploader(endpoint, apiKey string) *Uploader {
	return &Uploader{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Upload sends the JSON feed; any non-2xx response is an error carrying the
// start of the response body for diagnosis.
func (u *Uploader) Upload(ctx context.Context, payload []byte) error {
	if u == nil {
		return fmt.Errorf("feed uploader is nil")
	}
	if u.endpoint == "" {
		return fmt.Errorf("feed uploader misconfigured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("feed endpoint error %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return nil
}
