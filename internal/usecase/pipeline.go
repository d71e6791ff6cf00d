package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"AperoScanner/internal/domain"
	"AperoScanner/internal/ports"
)

// PipelineDeps wires all driven adapters into the discovery pipeline.
type PipelineDeps struct {
	Source     ports.EventSource
	Repository ports.EventRepository
	Writer     ports.FeedWriter
	Uploader   ports.FeedUploader
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Pipeline implements the apéro discovery workflow: scan every configured
// site, write the feed files, and announce events not seen in prior runs.
type Pipeline struct {
	source     ports.EventSource
	repository ports.EventRepository
	writer     ports.FeedWriter
	uploader   ports.FeedUploader
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		repository: deps.Repository,
		writer:     deps.Writer,
		uploader:   deps.Uploader,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
	}
}

// ProcessRun orchestrates one full discovery run.
func (p *Pipeline) ProcessRun(ctx context.Context) error {
	if p.source == nil {
		return nil
	}

	events, matches, err := p.source.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover events: %w", err)
	}

	if p.writer != nil {
		if err := p.writer.WriteEvents(events); err != nil {
			return fmt.Errorf("write feed: %w", err)
		}
		if err := p.writer.WriteMatches(matches); err != nil {
			return fmt.Errorf("write match records: %w", err)
		}
	}

	fresh, err := p.freshEvents(ctx, events)
	if err != nil {
		return err
	}

	if p.repository != nil {
		for _, event := range fresh {
			err := p.repository.SaveProcessed(ctx, domain.ProcessedEvent{
				Event:  event,
				Status: domain.StatusPublished,
			})
			if err != nil {
				return fmt.Errorf("persist event %s: %w", event.URL, err)
			}
		}
	}
	p.info("run complete", "events", len(events), "matches", len(matches), "fresh", len(fresh))

	if p.uploader != nil {
		payload, err := json.Marshal(events)
		if err != nil {
			return fmt.Errorf("encode feed payload: %w", err)
		}
		if err := p.uploader.Upload(ctx, payload); err != nil {
			return fmt.Errorf("upload feed: %w", err)
		}
	}

	if p.notifier == nil || len(fresh) == 0 {
		return nil
	}

	return p.notifier.PublishDigest(ctx, buildDigestMessage(fresh))
}

// freshEvents drops events whose URL was already announced in a prior run.
func (p *Pipeline) freshEvents(ctx context.Context, events []domain.NormalizedEvent) ([]domain.NormalizedEvent, error) {
	if p.repository == nil || len(events) == 0 {
		return events, nil
	}

	urls := make([]string, 0, len(events))
	for _, event := range events {
		if event.URL != "" {
			urls = append(urls, event.URL)
		}
	}

	seen, err := p.repository.AlreadyProcessed(ctx, urls)
	if err != nil {
		return nil, fmt.Errorf("load processed: %w", err)
	}

	fresh := make([]domain.NormalizedEvent, 0, len(events))
	for _, event := range events {
		if event.URL != "" && seen[event.URL] {
			continue
		}
		fresh = append(fresh, event)
	}
	return fresh, nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func buildDigestMessage(events []domain.NormalizedEvent) string {
	var formatted string
	for _, event := range events {
		line := fmt.Sprintf("- %s", event.Title)
		if event.Date != "" {
			line += fmt.Sprintf("\n%s", event.Date)
			if event.StartTime != "" {
				line += " " + event.StartTime
			}
		}
		if event.Location != "" {
			line += "\n" + event.Location
		}
		if event.Refreshments.Summary != "" {
			line += "\n" + event.Refreshments.Summary
		}
		formatted += line + "\n" + event.URL + "\n\n"
	}
	return formatted
}
