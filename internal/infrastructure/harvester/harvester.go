// Package harvester pulls events from paginated university APIs (Eve-style
// HAL responses) and projects them into the feed shape.
package harvester

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"AperoScanner/internal/domain"
)

const (
	userAgent      = "AperoScanner/1.0"
	requestTimeout = 10 * time.Second
	filterParam    = "where"
)

// Harvester walks a cursor-linked result set to completion.
type Harvester struct {
	client *http.Client
}

// NewHarvester wires an HTTP client; a nil client gets a 10-second timeout.
func NewHarvester(client *http.Client) *Harvester {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &Harvester{client: client}
}

// page is the HAL-style object shape: an item list plus an optional
// next-page link.
type page struct {
	Items []domain.RawEvent `json:"_items"`
	Links struct {
		Next struct {
			Href string `json:"href"`
		} `json:"next"`
	} `json:"_links"`
}

// FetchAll requests baseURL (with filter serialized as a JSON query
// parameter, if given) and follows pagination links until exhausted,
// returning every item. Any transport failure, non-success status, or
// unparseable page aborts the whole harvest; nothing partial is returned.
func (h *Harvester) FetchAll(ctx context.Context, baseURL string, filter map[string]any) ([]domain.RawEvent, error) {
	current, err := buildQueryURL(baseURL, filter)
	if err != nil {
		return nil, err
	}

	var events []domain.RawEvent
	for current != "" {
		body, err := h.fetch(ctx, current)
		if err != nil {
			return nil, err
		}

		items, next, err := decodePage(body)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", current, err)
		}
		events = append(events, items...)

		if next != "" && !strings.HasPrefix(next, "http") {
			next, err = resolveNext(baseURL, next)
			if err != nil {
				return nil, err
			}
		}
		current = next
	}

	return events, nil
}

func (h *Harvester) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api returned %s for %s", resp.Status, pageURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return body, nil
}

// decodePage accepts either a HAL object with _items or a bare item list.
// A bare list is terminal: no next link is assumed. Any other valid JSON
// shape, scalars included, ends pagination with whatever was accumulated;
// only an undecodable body aborts the harvest.
func decodePage(body []byte) ([]domain.RawEvent, string, error) {
	trimmed := strings.TrimSpace(string(body))
	switch {
	case strings.HasPrefix(trimmed, "["):
		var items []domain.RawEvent
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, "", err
		}
		return items, "", nil

	case strings.HasPrefix(trimmed, "{"):
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, "", err
		}
		if _, ok := fields["_items"]; !ok {
			return nil, "", nil
		}

		var p page
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, "", err
		}
		return p.Items, p.Links.Next.Href, nil

	default:
		if !json.Valid(body) {
			return nil, "", fmt.Errorf("response is not valid JSON")
		}
		return nil, "", nil
	}
}

// buildQueryURL serializes filter as a single JSON-encoded value under the
// fixed "where" parameter; a nil filter leaves baseURL untouched.
func buildQueryURL(baseURL string, filter map[string]any) (string, error) {
	if filter == nil {
		return baseURL, nil
	}

	encoded, err := json.Marshal(filter)
	if err != nil {
		return "", fmt.Errorf("encode filter: %w", err)
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", baseURL, err)
	}
	query := parsed.Query()
	query.Set(filterParam, string(encoded))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// resolveNext joins a relative next-page link against baseURL, with trailing
// slashes on baseURL stripped before joining.
func resolveNext(baseURL, next string) (string, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", baseURL, err)
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("invalid next link %s: %w", next, err)
	}
	return base.ResolveReference(ref).String(), nil
}
