package crawler

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// VisitedStore persists the crawler's deduplication set as a JSON array of
// absolute URLs, written sorted.
type VisitedStore struct {
	path string
}

// NewVisitedStore binds a store to a file path.
func NewVisitedStore(path string) *VisitedStore {
	return &VisitedStore{path: path}
}

// Load reads the persisted set; a missing file means an empty set, not an
// error.
func (s *VisitedStore) Load() (map[string]struct{}, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("read visited set: %w", err)
	}

	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return nil, fmt.Errorf("decode visited set: %w", err)
	}

	visited := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		visited[u] = struct{}{}
	}
	return visited, nil
}

// Save writes the set sorted, via a temp file rename so a crash never
// leaves a half-written state file.
func (s *VisitedStore) Save(visited map[string]struct{}) error {
	urls := make([]string, 0, len(visited))
	for u := range visited {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	raw, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		return fmt.Errorf("encode visited set: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write visited set: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace visited set: %w", err)
	}
	return nil
}
