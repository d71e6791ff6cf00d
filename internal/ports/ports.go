package ports

import (
	"context"

	"AperoScanner/internal/domain"
)

// EventSource discovers events across all configured sites.
type EventSource interface {
	Discover(ctx context.Context) ([]domain.NormalizedEvent, []domain.MatchRecord, error)
}

// EventRepository persists processed events for deduplication across runs.
type EventRepository interface {
	AlreadyProcessed(ctx context.Context, urls []string) (map[string]bool, error)
	SaveProcessed(ctx context.Context, event domain.ProcessedEvent) error
}

// FeedWriter serializes a run's results for downstream publishing tools.
type FeedWriter interface {
	WriteEvents(events []domain.NormalizedEvent) error
	WriteMatches(records []domain.MatchRecord) error
}

// FeedUploader pushes the rendered JSON feed to a downstream endpoint.
type FeedUploader interface {
	Upload(ctx context.Context, payload []byte) error
}

// Notifier streams digests of newly found events to Telegram or similar.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// PageCrawler is the browser-automation crawling backend for sites that
// need JavaScript rendering.
type PageCrawler interface {
	CrawlPages(ctx context.Context, req domain.PageCrawlRequest) ([]domain.PageRecord, error)
}

// Scheduler controls when discovery runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(ctx context.Context)) error
	Stop(ctx context.Context) error
}
