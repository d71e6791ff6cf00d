package render

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"AperoScanner/internal/domain"
	"AperoScanner/internal/infrastructure/crawler"
	"AperoScanner/internal/ports"
	"AperoScanner/internal/scanner"
)

const defaultMaxPages = 300

// RenderScanner discovers events on JavaScript-heavy sites by delegating
// traversal to the rendering backend and applying the crawler's match logic
// to every successfully rendered page.
type RenderScanner struct {
	backend ports.PageCrawler
	matcher *crawler.Crawler
	logger  *slog.Logger
}

// NewRenderScanner wires the backend client with the shared page matcher.
func NewRenderScanner(backend ports.PageCrawler, matcher *crawler.Crawler, logger *slog.Logger) *RenderScanner {
	return &RenderScanner{backend: backend, matcher: matcher, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *RenderScanner) Name() string {
	return "render"
}

// Scan requests a backend crawl scoped to the seed's domain and converts
// phrase hits on rendered pages into match records.
func (s *RenderScanner) Scan(ctx context.Context, req scanner.Request) (scanner.Result, error) {
	if req.URL == "" {
		return scanner.Result{}, fmt.Errorf("no seed url configured for site %s", req.SiteName)
	}
	seedURL, err := url.Parse(req.URL)
	if err != nil || seedURL.Host == "" {
		return scanner.Result{}, fmt.Errorf("invalid seed url %s for site %s", req.URL, req.SiteName)
	}

	backendReq := domain.PageCrawlRequest{
		SeedURL:        req.URL,
		AllowedDomains: []string{seedURL.Host},
		URLPatterns:    patternOption(req.Options),
		MaxDepth:       req.MaxDepth,
		MaxPages:       maxPagesOption(req.Options),
	}

	pages, err := s.backend.CrawlPages(ctx, backendReq)
	if err != nil {
		return scanner.Result{}, fmt.Errorf("render crawl %s: %w", req.SiteName, err)
	}
	s.debug("backend crawl done", "site", req.SiteName, "pages", len(pages))

	result := scanner.Result{}
	for _, page := range pages {
		if !page.Success || page.HTML == "" {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
		if err != nil {
			s.debug("parse rendered page failed", "url", page.URL, "error", err)
			continue
		}
		if record, ok := s.matcher.MatchPage(page.URL, []byte(page.HTML), doc); ok {
			result.Matches = append(result.Matches, record)
		}
	}

	return result, nil
}

func patternOption(options map[string]string) []string {
	if raw, ok := options["url_patterns"]; ok && raw != "" {
		return strings.Split(raw, ",")
	}
	return nil
}

func maxPagesOption(options map[string]string) int {
	if raw, ok := options["max_pages"]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultMaxPages
}

func (s *RenderScanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
