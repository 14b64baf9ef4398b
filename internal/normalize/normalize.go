package normalize

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"MarketSentiment/internal/domain"
)

// UnknownSource is the sentinel publisher applied when none of the known
// source fields is present in a raw record.
const UnknownSource = "unknown source"

// ErrInvalidRecord marks raw records missing a title or a company tag.
var ErrInvalidRecord = errors.New("invalid raw record")

// Fallback key priority per canonical field. Sources name the same thing
// differently (scrapers, RSS, quote APIs), so every field is resolved
// through an ordered alias list.
var (
	contentKeys   = []string{"full_text", "content", "text", "summary", "description"}
	sourceKeys    = []string{"source", "publisher"}
	urlKeys       = []string{"link", "url", "canonicalUrl"}
	publishedKeys = []string{"published_date", "publishedAt", "time", "date"}
)

// Article maps one heterogeneous raw record into the canonical Article.
// It is a pure transformation; records without a title or company are
// reported as invalid, never silently defaulted.
func Article(raw domain.RawArticle) (domain.Article, error) {
	title := firstString(raw, "title")
	company := firstString(raw, "company", "ticker")

	if title == "" || company == "" {
		return domain.Article{}, fmt.Errorf("%w: title=%q company=%q", ErrInvalidRecord, title, company)
	}

	source := firstString(raw, sourceKeys...)
	if source == "" {
		source = UnknownSource
	}

	return domain.Article{
		Title:       title,
		Content:     firstString(raw, contentKeys...),
		Company:     company,
		Source:      source,
		URL:         firstString(raw, urlKeys...),
		PublishedAt: firstString(raw, publishedKeys...),
	}, nil
}

// All normalizes a batch, dropping invalid records with a log line. One
// malformed record never aborts the batch.
func All(raws []domain.RawArticle, logger *slog.Logger) []domain.Article {
	articles := make([]domain.Article, 0, len(raws))
	for _, raw := range raws {
		article, err := Article(raw)
		if err != nil {
			if logger != nil {
				logger.Warn("dropping raw record", "error", err)
			}
			continue
		}
		articles = append(articles, article)
	}
	return articles
}

// firstString returns the first non-blank string value among the given keys.
// Non-string values are ignored rather than coerced.
func firstString(raw domain.RawArticle, keys ...string) string {
	for _, key := range keys {
		if value, ok := raw[key].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
