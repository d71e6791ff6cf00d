package scanner

import (
	"context"
	"fmt"

	"AperoScanner/internal/domain"
)

// Request carries all parameters required to scan one configured site.
type Request struct {
	SiteName string
	URL      string
	MaxDepth int
	Options  map[string]string
}

// Result aggregates what a strategy found: projected API events and/or
// per-page crawl match records.
type Result struct {
	Events  []domain.NormalizedEvent
	Matches []domain.MatchRecord
}

// Scanner captures a single discovery strategy (api, crawl, render).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) (Result, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}
