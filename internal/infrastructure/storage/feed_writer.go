package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"AperoScanner/internal/domain"
	"AperoScanner/internal/ports"
)

const (
	eventsFile  = "apero_events.json"
	matchesFile = "apero_results.json"
)

// JSONFeedWriter rewrites the feed files completely on every run.
type JSONFeedWriter struct {
	dir string
}

var _ ports.FeedWriter = (*JSONFeedWriter)(nil)

// NewJSONFeedWriter binds the writer to an output directory, creating it if
// needed.
func NewJSONFeedWriter(dir string) (*JSONFeedWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &JSONFeedWriter{dir: dir}, nil
}

// WriteEvents serializes the normalized event feed.
func (w *JSONFeedWriter) WriteEvents(events []domain.NormalizedEvent) error {
	if events == nil {
		events = []domain.NormalizedEvent{}
	}
	return w.write(eventsFile, events)
}

// WriteMatches serializes the crawl match records.
func (w *JSONFeedWriter) WriteMatches(records []domain.MatchRecord) error {
	if records == nil {
		records = []domain.MatchRecord{}
	}
	return w.write(matchesFile, records)
}

// EventsPath points at the serialized feed, for uploads.
func (w *JSONFeedWriter) EventsPath() string {
	return filepath.Join(w.dir, eventsFile)
}

func (w *JSONFeedWriter) write(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	path := filepath.Join(w.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
