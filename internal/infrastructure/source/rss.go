package source

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	"MarketSentiment/internal/domain"
	"MarketSentiment/internal/fetch"
)

// RSSFetcher pulls articles from an RSS or Atom feed.
type RSSFetcher struct {
	parser *gofeed.Parser
}

var _ fetch.Fetcher = (*RSSFetcher)(nil)

// NewRSSFetcher builds a fetcher with a shared feed parser.
func NewRSSFetcher() *RSSFetcher {
	return &RSSFetcher{parser: gofeed.NewParser()}
}

// Name identifies the strategy inside the registry.
func (f *RSSFetcher) Name() string {
	return "rss"
}

// Fetch parses the feed URL and maps items to raw records. The raw key names
// mirror what feed items actually provide; the normalizer resolves them.
func (f *RSSFetcher) Fetch(ctx context.Context, req fetch.Request) ([]domain.RawArticle, error) {
	feed, err := f.parser.ParseURLWithContext(req.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", req.URL, err)
	}

	publisher := feed.Title
	if publisher == "" {
		publisher = req.SourceName
	}

	raws := make([]domain.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		raw := domain.RawArticle{
			"title":     item.Title,
			"summary":   item.Description,
			"link":      item.Link,
			"publisher": publisher,
			"company":   req.Company,
		}
		if item.Content != "" {
			raw["full_text"] = item.Content
		}
		if item.Published != "" {
			raw["time"] = item.Published
		}
		raws = append(raws, raw)
	}

	return raws, nil
}
