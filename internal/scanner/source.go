package scanner

import (
	"context"
	"fmt"
	"log/slog"

	"AperoScanner/internal/config"
	"AperoScanner/internal/domain"
	"AperoScanner/internal/ports"
)

// StrategySource implements EventSource via registered scanner strategies.
type StrategySource struct {
	registry *Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.EventSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sites.
func NewStrategySource(reg *Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// Discover iterates over configured sites and executes their strategies.
// A failing site is logged and skipped; the remaining sites still run.
// Within one site, a harvest failure is all-or-nothing: no partial results.
func (s *StrategySource) Discover(ctx context.Context) ([]domain.NormalizedEvent, []domain.MatchRecord, error) {
	if s.registry == nil {
		return nil, nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("discover", "sites", len(s.sites))

	var (
		events  []domain.NormalizedEvent
		matches []domain.MatchRecord
	)
	for _, site := range s.sites {
		s.debug("process site", "site", site.Name, "scanner", site.Scanner)
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		req := Request{
			SiteName: site.Name,
			URL:      site.URL,
			MaxDepth: site.MaxDepth,
			Options:  site.Options,
		}

		result, err := strategy.Scan(ctx, req)
		if err != nil {
			s.error("site scan failed", "site", site.Name, "error", err)
			continue
		}

		s.debug("site done", "site", site.Name,
			"events", len(result.Events), "matches", len(result.Matches))
		events = append(events, result.Events...)
		matches = append(matches, result.Matches...)
	}

	s.debug("discover done", "total_events", len(events), "total_matches", len(matches))
	return events, matches, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) error(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
