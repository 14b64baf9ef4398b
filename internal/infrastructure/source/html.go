package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"MarketSentiment/internal/domain"
	"MarketSentiment/internal/fetch"
)

// Selector option keys understood by the HTML strategy. Each configured site
// supplies its own selectors, so one strategy serves every headline page.
const (
	optItemSelector    = "item"
	optTitleSelector   = "title"
	optLinkSelector    = "link"
	optSummarySelector = "summary"
)

// HTMLFetcher crawls a headline listing page and extracts articles using
// config-driven selectors.
type HTMLFetcher struct {
	client *http.Client
}

var _ fetch.Fetcher = (*HTMLFetcher)(nil)

// NewHTMLFetcher wires an HTTP client; a nil client gets a sane default.
func NewHTMLFetcher(client *http.Client) *HTMLFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLFetcher{client: client}
}

// Name identifies the strategy inside the registry.
func (f *HTMLFetcher) Name() string {
	return "html"
}

// Fetch downloads the page and extracts one raw record per matched item.
func (f *HTMLFetcher) Fetch(ctx context.Context, req fetch.Request) ([]domain.RawArticle, error) {
	itemSel := req.Options[optItemSelector]
	titleSel := req.Options[optTitleSelector]
	if itemSel == "" || titleSel == "" {
		return nil, fmt.Errorf("source %s: html strategy requires %q and %q options", req.SourceName, optItemSelector, optTitleSelector)
	}

	doc, err := f.fetchDocument(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", req.SourceName, err)
	}

	base, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("source %s: invalid url %s: %w", req.SourceName, req.URL, err)
	}

	var raws []domain.RawArticle
	doc.Find(itemSel).Each(func(_ int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find(titleSel).First().Text())

		link := item.Find(req.Options[optLinkSelector]).First()
		if req.Options[optLinkSelector] == "" {
			link = item.Find("a").First()
		}
		href, _ := link.Attr("href")
		href = resolveLink(base, href)

		raw := domain.RawArticle{
			"title":     title,
			"link":      href,
			"publisher": req.SourceName,
			"company":   req.Company,
		}
		if sel := req.Options[optSummarySelector]; sel != "" {
			raw["summary"] = strings.TrimSpace(item.Find(sel).First().Text())
		}
		raws = append(raws, raw)
	})

	return raws, nil
}

func (f *HTMLFetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "MarketSentiment/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func resolveLink(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(parsed).String()
}
