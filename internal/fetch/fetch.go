package fetch

import (
	"context"
	"fmt"

	"MarketSentiment/internal/domain"
)

// Request carries all parameters required to pull one configured source.
type Request struct {
	SourceName string
	Company    string
	URL        string
	Options    map[string]string
}

// Fetcher captures a single retrieval strategy (RSS feed, HTML page, etc.).
// Strategies return raw records; normalization happens downstream.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]domain.RawArticle, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: map[string]Fetcher{}}
}

// Register adds or replaces a fetch strategy.
func (r *Registry) Register(fetcher Fetcher) {
	if r.fetchers == nil {
		r.fetchers = map[string]Fetcher{}
	}
	r.fetchers[fetcher.Name()] = fetcher
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Fetcher, error) {
	if fetcher, ok := r.fetchers[name]; ok {
		return fetcher, nil
	}
	return nil, fmt.Errorf("fetcher %s is not registered", name)
}
