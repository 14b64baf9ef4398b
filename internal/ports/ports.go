package ports

import (
	"context"
	"time"

	"MarketSentiment/internal/domain"
)

// ArticleSource pulls raw scraped records from the configured providers.
type ArticleSource interface {
	Fetch(ctx context.Context) ([]domain.RawArticle, error)
}

// Classifier scores a single text. Implementations wrap the external
// sentiment model; the model is loaded once and reused across calls.
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.Sentiment, error)
}

// ArticleStore persists canonical articles exactly once per (url, company)
// pair and serves read-back queries for the UI.
type ArticleStore interface {
	Save(ctx context.Context, article domain.Article) (domain.SaveOutcome, error)
	UpdateSentiment(ctx context.Context, id int64, sentiment domain.Sentiment) error
	FetchAll(ctx context.Context) ([]domain.Article, error)
	FetchByCompany(ctx context.Context, company string) ([]domain.Article, error)
	FetchPending(ctx context.Context) ([]domain.Article, error)
}

// TrendRecorder appends aggregation snapshots to an ordered, append-only
// history and reads it back for time-series display.
type TrendRecorder interface {
	Append(ctx context.Context, snapshot domain.Snapshot) error
	History(ctx context.Context) ([]domain.Snapshot, error)
}

// Scheduler controls when pipeline cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
