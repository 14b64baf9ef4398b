package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"MarketSentiment/internal/aggregate"
	"MarketSentiment/internal/analyze"
	"MarketSentiment/internal/domain"
	"MarketSentiment/internal/normalize"
	"MarketSentiment/internal/ports"
)

// RawArchiver records each cycle's raw scrape for audit. Optional.
type RawArchiver interface {
	Append(ctx context.Context, at time.Time, raws []domain.RawArticle) error
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source   ports.ArticleSource
	Store    ports.ArticleStore
	Analyzer *analyze.Analyzer
	Trend    ports.TrendRecorder
	Archive  RawArchiver
	Logger   *slog.Logger
	Now      func() time.Time
}

// Pipeline drives one ingestion cycle: fetch, normalize, classify, persist
// with dedup, aggregate, record trend.
type Pipeline struct {
	source   ports.ArticleSource
	store    ports.ArticleStore
	analyzer *analyze.Analyzer
	trend    ports.TrendRecorder
	archive  RawArchiver
	logger   *slog.Logger
	now      func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		source:   deps.Source,
		store:    deps.Store,
		analyzer: deps.Analyzer,
		trend:    deps.Trend,
		archive:  deps.Archive,
		logger:   deps.Logger,
		now:      now,
	}
}

// RunCycle executes one full ingestion cycle and reports counts. A fetch
// failure aborts before any stage with side effects, so the store and trend
// history stay untouched and the next scheduled cycle is the retry. Past the
// fetch, failures are absorbed per record; only a trend write failure aborts
// the cycle, and a retried cycle is safe because the store dedup key absorbs
// re-inserts.
func (p *Pipeline) RunCycle(ctx context.Context) (domain.Report, error) {
	startedAt := p.now()

	raws, err := p.source.Fetch(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("fetch articles: %w", err)
	}

	report := domain.Report{Found: len(raws), CompanyScores: map[string]float64{}}
	if len(raws) == 0 {
		p.info("no articles fetched, skipping cycle")
		return report, nil
	}

	if p.archive != nil {
		if err := p.archive.Append(ctx, startedAt, raws); err != nil {
			p.warn("archiving raw articles failed", "error", err)
		}
	}

	articles := normalize.All(raws, p.logger)
	p.info("normalized articles", "found", report.Found, "valid", len(articles))

	analyzed := p.analyzer.Batch(ctx, articles)

	for _, article := range analyzed {
		outcome, err := p.store.Save(ctx, article)
		if err != nil {
			p.warn("persisting article failed", "title", article.Title, "company", article.Company, "error", err)
			report.Skipped++
			continue
		}
		switch outcome {
		case domain.SaveInserted:
			report.Added++
		default:
			report.Skipped++
		}
	}

	report.CompanyScores = aggregate.ByCompany(analyzed)

	snapshot := domain.Snapshot{Timestamp: startedAt, Scores: report.CompanyScores}
	if err := p.trend.Append(ctx, snapshot); err != nil {
		return report, fmt.Errorf("record trend snapshot: %w", err)
	}

	p.info("cycle complete", "found", report.Found, "added", report.Added,
		"skipped", report.Skipped, "companies", len(report.CompanyScores))
	return report, nil
}

// ClassifyPending backfills classification for stored articles that never
// got one (for example after a crash between insert and classify). Updates
// are keyed by row id, so rerunning is idempotent.
func (p *Pipeline) ClassifyPending(ctx context.Context) (int, error) {
	pending, err := p.store.FetchPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch pending articles: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	p.info("classifying pending articles", "count", len(pending))

	var updated int
	for _, article := range pending {
		analyzed := p.analyzer.Article(ctx, article)
		if err := p.store.UpdateSentiment(ctx, article.ID, *analyzed.Sentiment); err != nil {
			p.warn("updating classification failed", "id", article.ID, "error", err)
			continue
		}
		updated++
	}

	return updated, nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
