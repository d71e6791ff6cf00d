package harvester

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"AperoScanner/internal/classify"
	"AperoScanner/internal/scanner"
)

// filteredFields are the free-text fields the server-side filter scans.
var filteredFields = []string{
	"title_en", "description_en", "catchphrase_en",
	"title_de", "description_de", "catchphrase_de",
}

// filterTerms are matched case-insensitively by the API itself; local
// classification refines the result afterwards.
var filterTerms = []string{"aper", "food", "essen"}

// APIScanner is the paginated-API discovery strategy.
type APIScanner struct {
	harvester *Harvester
	rules     []classify.Rule
	logger    *slog.Logger
}

// NewAPIScanner wires a strategy around the harvester; nil rules fall back
// to the default rule table.
func NewAPIScanner(client *http.Client, rules []classify.Rule, logger *slog.Logger) *APIScanner {
	if rules == nil {
		rules = classify.DefaultRules
	}
	return &APIScanner{harvester: NewHarvester(client), rules: rules, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *APIScanner) Name() string {
	return "api"
}

// Scan harvests every event page, projects each raw event, and attaches the
// refreshment classification. A harvest failure aborts the whole site scan.
func (s *APIScanner) Scan(ctx context.Context, req scanner.Request) (scanner.Result, error) {
	if req.URL == "" {
		return scanner.Result{}, fmt.Errorf("no api url configured for site %s", req.SiteName)
	}

	raw, err := s.harvester.FetchAll(ctx, req.URL, DefaultFilter())
	if err != nil {
		return scanner.Result{}, fmt.Errorf("harvest %s: %w", req.SiteName, err)
	}
	s.debug("harvest done", "site", req.SiteName, "events", len(raw))

	result := scanner.Result{}
	for _, event := range raw {
		normalized := Extract(event)
		normalized.Refreshments = classify.Classify(event, s.rules)
		result.Events = append(result.Events, normalized)
	}

	return result, nil
}

// DefaultFilter builds the server-side OR filter: a regex condition per
// text field and term, mirroring what the classifier looks for locally.
func DefaultFilter() map[string]any {
	conditions := make([]any, 0, len(filteredFields)*len(filterTerms))
	for _, term := range filterTerms {
		for _, field := range filteredFields {
			conditions = append(conditions, map[string]any{
				field: map[string]any{"$regex": term, "$options": "i"},
			})
		}
	}
	return map[string]any{"$or": conditions}
}

func (s *APIScanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
