package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"AperoScanner/internal/domain"
	"AperoScanner/internal/infrastructure/crawler"
	"AperoScanner/internal/scanner"
)

type fakeBackend struct {
	req   domain.PageCrawlRequest
	pages []domain.PageRecord
}

func (f *fakeBackend) CrawlPages(ctx context.Context, req domain.PageCrawlRequest) ([]domain.PageRecord, error) {
	f.req = req
	return f.pages, nil
}

func TestRenderScanMatchesRenderedPages(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{pages: []domain.PageRecord{
		{
			URL:     "https://www.vmp.ethz.ch/en/events/apero",
			Success: true,
			Depth:   1,
			HTML:    `<html><head><title>Apero</title></head><body><p>apero with snacks</p></body></html>`,
		},
		{
			URL:     "https://www.vmp.ethz.ch/en/events/lecture",
			Success: true,
			Depth:   1,
			HTML:    `<html><body><p>a regular lecture</p></body></html>`,
		},
		{URL: "https://www.vmp.ethz.ch/broken", Success: false},
	}}

	matcher := crawler.New(nil, crawler.Config{Delay: time.Millisecond}, nil)
	s := NewRenderScanner(backend, matcher, nil)

	result, err := s.Scan(context.Background(), scanner.Request{
		SiteName: "vmp",
		URL:      "https://www.vmp.ethz.ch/en/events/alle_events",
		MaxDepth: 2,
		Options:  map[string]string{"url_patterns": "*events*", "max_pages": "50"},
	})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	if len(result.Matches) != 1 {
		t.Fatalf("expected one match, got %d", len(result.Matches))
	}
	if result.Matches[0].Title != "Apero" {
		t.Fatalf("unexpected title: %q", result.Matches[0].Title)
	}

	if backend.req.MaxDepth != 2 || backend.req.MaxPages != 50 {
		t.Fatalf("unexpected backend request: %+v", backend.req)
	}
	if len(backend.req.AllowedDomains) != 1 || backend.req.AllowedDomains[0] != "www.vmp.ethz.ch" {
		t.Fatalf("unexpected allow list: %v", backend.req.AllowedDomains)
	}
}

func TestClientPostsCrawlRequest(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crawl" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected auth header %q", got)
		}
		_, _ = w.Write([]byte(`[{"url":"https://example.org/","success":true,"depth":0,"html":"<html></html>"}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "key")
	pages, err := c.CrawlPages(context.Background(), domain.PageCrawlRequest{SeedURL: "https://example.org/"})
	if err != nil {
		t.Fatalf("CrawlPages returned error: %v", err)
	}
	if len(pages) != 1 || !pages[0].Success {
		t.Fatalf("unexpected pages: %+v", pages)
	}
}
