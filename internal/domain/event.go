package domain

import "time"

// RawEvent is one event row as returned by an upstream API: a loose bag of
// named fields whose shape we do not control.
type RawEvent map[string]any

// Text returns the string value stored under key, or "" when the key is
// absent or holds a non-string value.
func (e RawEvent) Text(key string) string {
	if v, ok := e[key].(string); ok {
		return v
	}
	return ""
}

// SelfLink extracts the event's own URL from the HAL-style _links section.
func (e RawEvent) SelfLink() string {
	links, ok := e["_links"].(map[string]any)
	if !ok {
		return ""
	}
	self, ok := links["self"].(map[string]any)
	if !ok {
		return ""
	}
	if href, ok := self["href"].(string); ok {
		return href
	}
	return ""
}

// NormalizedEvent is the projected, feed-ready shape of a RawEvent.
// Date is YYYY-MM-DD, times are HH:MM; all fields default to "".
type NormalizedEvent struct {
	URL          string            `json:"url"`
	Title        string            `json:"title"`
	Date         string            `json:"date"`
	StartTime    string            `json:"start_time"`
	EndTime      string            `json:"end_time"`
	Location     string            `json:"location"`
	Refreshments RefreshmentResult `json:"refreshments"`
}

// RefreshmentResult describes what an event offers, as inferred from its
// free-text fields. Categories is in display order; Matches holds the
// keywords that fired per category, sorted lexically. All three are empty
// together or populated together.
type RefreshmentResult struct {
	Categories []string            `json:"categories,omitempty"`
	Matches    map[string][]string `json:"matches,omitempty"`
	Summary    string              `json:"summary,omitempty"`
}

// Empty reports whether no rule hit the event at all.
func (r RefreshmentResult) Empty() bool {
	return len(r.Categories) == 0
}

// MatchRecord is emitted by the link crawler when a target phrase is found
// on a page. Date/time/location carry "Not found" when extraction misses.
type MatchRecord struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Location  string `json:"location"`
}

// PageRecord is one page yielded by the browser-automation crawling backend.
type PageRecord struct {
	URL     string `json:"url"`
	Success bool   `json:"success"`
	Depth   int    `json:"depth"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// PageCrawlRequest parameterizes a backend-driven crawl.
type PageCrawlRequest struct {
	SeedURL        string   `json:"seed_url"`
	AllowedDomains []string `json:"allowed_domains"`
	URLPatterns    []string `json:"url_patterns"`
	MaxDepth       int      `json:"max_depth"`
	MaxPages       int      `json:"max_pages"`
}

// ProcessingStatus enumerates pipeline milestones.
type ProcessingStatus string

const (
	StatusDiscovered ProcessingStatus = "discovered"
	StatusPublished  ProcessingStatus = "published"
)

// ProcessedEvent persisted to Postgres so re-runs do not re-announce events.
type ProcessedEvent struct {
	Event     NormalizedEvent
	Status    ProcessingStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
