package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"MarketSentiment/internal/config"
	"MarketSentiment/internal/domain"
	"MarketSentiment/internal/fetch"
	"MarketSentiment/internal/ports"
)

// MultiSource implements ArticleSource by fanning out over the configured
// sources with their registered fetch strategies. Sources are fetched
// concurrently; any failure fails the whole fetch, which the pipeline treats
// as a cycle-level fetch failure.
type MultiSource struct {
	registry *fetch.Registry
	sources  []config.SourceConfig
	limit    int
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*MultiSource)(nil)

// NewMultiSource wires the fetch registry with config-defined sources.
func NewMultiSource(reg *fetch.Registry, sources []config.SourceConfig, logger *slog.Logger) *MultiSource {
	return &MultiSource{
		registry: reg,
		sources:  sources,
		limit:    4,
		logger:   logger,
	}
}

// Fetch pulls every configured source and concatenates the raw records.
func (s *MultiSource) Fetch(ctx context.Context) ([]domain.RawArticle, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("fetch registry is not configured")
	}

	s.debug("fetch sources", "count", len(s.sources))

	var mu sync.Mutex
	var aggregated []domain.RawArticle

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.limit)

	for _, src := range s.sources {
		group.Go(func() error {
			strategy, err := s.registry.Resolve(src.Fetcher)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Name, err)
			}

			req := fetch.Request{
				SourceName: src.Name,
				Company:    src.Company,
				URL:        src.URL,
				Options:    src.Options,
			}

			raws, err := strategy.Fetch(groupCtx, req)
			if err != nil {
				return fmt.Errorf("fetch source %s: %w", src.Name, err)
			}

			s.debug("source produced records", "source", src.Name, "count", len(raws))

			mu.Lock()
			aggregated = append(aggregated, raws...)
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	s.debug("fetch done", "total_records", len(aggregated))
	return aggregated, nil
}

func (s *MultiSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
