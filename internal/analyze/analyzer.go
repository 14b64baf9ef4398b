package analyze

import (
	"context"
	"log/slog"

	"MarketSentiment/internal/domain"
	"MarketSentiment/internal/ports"
)

// DefaultMaxTextRunes matches the upstream model's supported input length.
// Truncation keeps the prefix: financial headlines and leads carry most of
// the signal.
const DefaultMaxTextRunes = 2000

// Analyzer wraps the external classifier with batch orchestration, input
// truncation, and the empty-text short circuit. The underlying model is a
// single long-lived resource and is assumed non-thread-safe, so batches run
// sequentially.
type Analyzer struct {
	classifier ports.Classifier
	maxRunes   int
	logger     *slog.Logger
}

// New builds an Analyzer around a classifier. maxRunes <= 0 selects the
// default limit.
func New(classifier ports.Classifier, maxRunes int, logger *slog.Logger) *Analyzer {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxTextRunes
	}
	return &Analyzer{classifier: classifier, maxRunes: maxRunes, logger: logger}
}

// Article returns a copy of the article with its classification populated.
// Empty analysis text never reaches the model; it maps to the fixed neutral
// default. A classifier failure also falls back to the neutral default so a
// single bad input cannot lose a whole cycle.
func (a *Analyzer) Article(ctx context.Context, article domain.Article) domain.Article {
	text := a.truncate(article.AnalysisText())
	if text == "" {
		sentiment := domain.NeutralDefault()
		article.Sentiment = &sentiment
		return article
	}

	sentiment, err := a.classifier.Classify(ctx, text)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("classification failed, assigning neutral default",
				"title", article.Title, "company", article.Company, "error", err)
		}
		sentiment = domain.NeutralDefault()
	}

	article.Sentiment = &sentiment
	return article
}

// Batch classifies articles sequentially and returns the enriched copies.
func (a *Analyzer) Batch(ctx context.Context, articles []domain.Article) []domain.Article {
	analyzed := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		analyzed = append(analyzed, a.Article(ctx, article))
	}
	return analyzed
}

func (a *Analyzer) truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= a.maxRunes {
		return text
	}
	return string(runes[:a.maxRunes])
}
