// Package crawler performs domain-scoped, depth-bounded link traversal and
// emits a match record for every page mentioning a target phrase.
package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"AperoScanner/internal/domain"
)

const (
	defaultUserAgent = "AperoScanner/1.0 (+https://example.com/bot)"
	defaultTimeout   = 10 * time.Second
	defaultDelay     = time.Second
)

// DefaultPhrases are searched case-insensitively in the raw HTML.
var DefaultPhrases = []string{"apero", "aperitif"}

// skippedExtensions are binary/media suffixes never worth fetching.
var skippedExtensions = []string{".pdf", ".jpg", ".jpeg", ".png", ".gif"}

var (
	isoDateExpr  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	clockExpr    = regexp.MustCompile(`\d{1,2}:\d{2}`)
	locationExpr = regexp.MustCompile(`(?i)(?:Venue|Location)[:\-]\s*([A-Za-z0-9 ,.-]+)`)
)

// Config tunes one crawler instance; zero values pick the defaults above.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	Delay     time.Duration
	Phrases   []string
}

// Crawler walks a site depth-first from a seed URL, respecting a shared
// visited set so pages are fetched at most once across runs.
type Crawler struct {
	client      *http.Client
	userAgent   string
	delay       time.Duration
	phraseExpr  *regexp.Regexp
	snippetExpr *regexp.Regexp
	logger      *slog.Logger
}

type frontierEntry struct {
	url   string
	depth int
}

// New builds a crawler; a nil client gets the default bounded timeout.
func New(client *http.Client, cfg Config, logger *slog.Logger) *Crawler {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Delay == 0 {
		cfg.Delay = defaultDelay
	}
	if len(cfg.Phrases) == 0 {
		cfg.Phrases = DefaultPhrases
	}

	alternation := make([]string, 0, len(cfg.Phrases))
	for _, p := range cfg.Phrases {
		alternation = append(alternation, regexp.QuoteMeta(p))
	}
	joined := strings.Join(alternation, "|")

	return &Crawler{
		client:      client,
		userAgent:   cfg.UserAgent,
		delay:       cfg.Delay,
		phraseExpr:  regexp.MustCompile(`(?i)` + joined),
		snippetExpr: regexp.MustCompile(`(?i).{0,100}(?:` + joined + `).{0,100}`),
		logger:      logger,
	}
}

// Crawl traverses depth-first from seed, bounded by maxDepth, following only
// links on the seed's exact host. visited is mutated in place: every URL is
// marked before its fetch is attempted, so a failed fetch still consumes the
// slot and is not retried within the run.
func (c *Crawler) Crawl(ctx context.Context, seed string, maxDepth int, visited map[string]struct{}) ([]domain.MatchRecord, error) {
	seedURL, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("invalid seed url %s: %w", seed, err)
	}
	if seedURL.Host == "" {
		return nil, fmt.Errorf("seed url %s has no host", seed)
	}
	host := seedURL.Host

	var records []domain.MatchRecord
	stack := []frontierEntry{{url: seed, depth: 0}}

	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[entry.url]; seen {
			continue
		}
		visited[entry.url] = struct{}{}

		if entry.depth > 0 {
			// Politeness delay before every followed fetch.
			time.Sleep(c.delay)
		}

		html, err := c.fetch(ctx, entry.url)
		if err != nil {
			c.warn("fetch failed", "url", entry.url, "error", err)
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
		if err != nil {
			c.warn("parse failed", "url", entry.url, "error", err)
			continue
		}

		if record, ok := c.MatchPage(entry.url, html, doc); ok {
			c.debug("phrase found", "url", entry.url)
			records = append(records, record)
		}

		if entry.depth >= maxDepth {
			continue
		}

		links := c.pageLinks(entry.url, host, doc, visited)
		// Push in reverse so the first link on the page is fetched first.
		for i := len(links) - 1; i >= 0; i-- {
			stack = append(stack, frontierEntry{url: links[i], depth: entry.depth + 1})
		}
	}

	return records, nil
}

func (c *Crawler) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// MatchPage searches the raw HTML for the target phrases and, on a hit,
// assembles a match record with a snippet around the first occurrence and
// best-effort event details. Also used for pages delivered by the
// browser-automation backend.
func (c *Crawler) MatchPage(pageURL string, html []byte, doc *goquery.Document) (domain.MatchRecord, bool) {
	if !c.phraseExpr.Match(html) {
		return domain.MatchRecord{}, false
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "No title"
	}

	snippet := c.snippetExpr.FindString(string(html))
	if snippet == "" {
		snippet = "Snippet not available"
	}

	date, startTime, endTime, location := extractDetails(doc)

	return domain.MatchRecord{
		URL:       pageURL,
		Title:     title,
		Snippet:   snippet,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		Location:  location,
	}, true
}

// extractDetails pulls date/time/location heuristically: <time> elements
// first, then location/venue classes, then a labeled scan of the visible
// text. Misses yield the literal "Not found", never an empty field.
func extractDetails(doc *goquery.Document) (date, startTime, endTime, location string) {
	date, startTime, endTime, location = "Not found", "Not found", "Not found", "Not found"

	if timeEl := doc.Find("time").First(); timeEl.Length() > 0 {
		text := strings.TrimSpace(timeEl.Text())
		if m := isoDateExpr.FindString(text); m != "" {
			date = m
		}
		if m := clockExpr.FindString(text); m != "" {
			startTime = m
		}
	}

	locEl := doc.Find(".location").First()
	if locEl.Length() == 0 {
		locEl = doc.Find(".venue").First()
	}
	if locEl.Length() > 0 {
		location = strings.TrimSpace(locEl.Text())
	} else if m := locationExpr.FindStringSubmatch(doc.Text()); m != nil {
		location = strings.TrimSpace(m[1])
	}

	return date, startTime, endTime, location
}

// pageLinks resolves every anchor against the page URL and keeps those on
// the seed host that are not media files and not yet visited.
func (c *Crawler) pageLinks(pageURL, host string, doc *goquery.Document, visited map[string]struct{}) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		absolute := base.ResolveReference(ref)
		if absolute.Host != host {
			return
		}
		target := absolute.String()
		lower := strings.ToLower(target)
		for _, ext := range skippedExtensions {
			if strings.HasSuffix(lower, ext) {
				return
			}
		}
		if _, seen := visited[target]; seen {
			return
		}
		links = append(links, target)
	})

	return links
}

func (c *Crawler) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func (c *Crawler) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
