package crawler

import (
	"context"
	"fmt"
	"log/slog"

	"AperoScanner/internal/scanner"
)

// CrawlScanner is the link-crawling discovery strategy. The visited set is
// loaded once before a traversal and saved once after it, so prior runs'
// deduplication survives while a crash mid-crawl only loses the current run.
type CrawlScanner struct {
	crawler *Crawler
	store   *VisitedStore
	logger  *slog.Logger
}

// NewCrawlScanner wires the crawler with its persistent visited-set store.
func NewCrawlScanner(crawler *Crawler, store *VisitedStore, logger *slog.Logger) *CrawlScanner {
	return &CrawlScanner{crawler: crawler, store: store, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *CrawlScanner) Name() string {
	return "crawl"
}

// Scan crawls from the site's seed URL and returns the match records found.
func (s *CrawlScanner) Scan(ctx context.Context, req scanner.Request) (scanner.Result, error) {
	if req.URL == "" {
		return scanner.Result{}, fmt.Errorf("no seed url configured for site %s", req.SiteName)
	}

	visited := map[string]struct{}{}
	if s.store != nil {
		loaded, err := s.store.Load()
		if err != nil {
			s.warn("could not load visited set", "site", req.SiteName, "error", err)
		} else {
			visited = loaded
		}
	}

	records, err := s.crawler.Crawl(ctx, req.URL, req.MaxDepth, visited)
	if err != nil {
		return scanner.Result{}, fmt.Errorf("crawl %s: %w", req.SiteName, err)
	}

	if s.store != nil {
		if err := s.store.Save(visited); err != nil {
			s.warn("could not save visited set", "site", req.SiteName, "error", err)
		}
	}

	return scanner.Result{Matches: records}, nil
}

func (s *CrawlScanner) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
