package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MarketSentiment/internal/analyze"
	"MarketSentiment/internal/domain"
	"MarketSentiment/internal/usecase"
)

type stubStore struct {
	articles []domain.Article
}

func (s *stubStore) Save(context.Context, domain.Article) (domain.SaveOutcome, error) {
	return domain.SaveInserted, nil
}

func (s *stubStore) UpdateSentiment(context.Context, int64, domain.Sentiment) error {
	return nil
}

func (s *stubStore) FetchAll(context.Context) ([]domain.Article, error) {
	return s.articles, nil
}

func (s *stubStore) FetchByCompany(_ context.Context, company string) ([]domain.Article, error) {
	var out []domain.Article
	for _, a := range s.articles {
		if a.Company == company {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubStore) FetchPending(context.Context) ([]domain.Article, error) {
	return nil, nil
}

type stubTrend struct {
	snapshots []domain.Snapshot
}

func (s *stubTrend) Append(_ context.Context, snapshot domain.Snapshot) error {
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

func (s *stubTrend) History(context.Context) ([]domain.Snapshot, error) {
	return s.snapshots, nil
}

func testStore() *stubStore {
	return &stubStore{articles: []domain.Article{
		{
			ID: 1, Title: "Tesla beats", Company: "TSLA", Source: "cnbc",
			URL: "https://example.com/1",
			Sentiment: &domain.Sentiment{
				Label: domain.LabelPositive, Confidence: 0.9,
			},
		},
		{
			ID: 2, Title: "Tesla recall", Company: "TSLA", Source: "cnbc",
			URL: "https://example.com/2",
			Sentiment: &domain.Sentiment{
				Label: domain.LabelNegative, Confidence: 0.8,
			},
		},
		{ID: 3, Title: "Apple pending", Company: "AAPL", Source: "yahoo", URL: "https://example.com/3"},
	}}
}

func TestHandleArticles(t *testing.T) {
	t.Parallel()

	server := NewServer(testStore(), &stubTrend{}, nil, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var articles []articleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &articles); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}
	if articles[0].Sentiment == nil || articles[0].Sentiment.Label != domain.LabelPositive {
		t.Fatalf("sentiment missing: %+v", articles[0])
	}
	if articles[2].Sentiment != nil {
		t.Fatal("pending article must have no sentiment field")
	}
}

func TestHandleArticlesByCompany(t *testing.T) {
	t.Parallel()

	server := NewServer(testStore(), &stubTrend{}, nil, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/AAPL", nil))

	var articles []articleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &articles); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(articles) != 1 || articles[0].Company != "AAPL" {
		t.Fatalf("unexpected articles: %+v", articles)
	}
}

func TestHandleScores(t *testing.T) {
	t.Parallel()

	server := NewServer(testStore(), &stubTrend{}, nil, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sentiment/scores", nil))

	var scores map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &scores); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	want := (0.9 - 0.8) / 2
	if diff := scores["TSLA"] - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected TSLA score %.4f, got %.4f", want, scores["TSLA"])
	}
	if scores["AAPL"] != 0.0 {
		t.Fatalf("expected AAPL zero convention, got %v", scores["AAPL"])
	}
}

func TestHandleStats(t *testing.T) {
	t.Parallel()

	server := NewServer(testStore(), &stubTrend{}, nil, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sentiment/stats", nil))

	var stats map[string]domain.CompanyStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	tsla := stats["TSLA"]
	if tsla.TotalArticles != 2 || tsla.Positive != 1 || tsla.Negative != 1 {
		t.Fatalf("unexpected TSLA stats: %+v", tsla)
	}
}

func TestHandleTrend(t *testing.T) {
	t.Parallel()

	trend := &stubTrend{snapshots: []domain.Snapshot{
		{Timestamp: time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC), Scores: map[string]float64{"TSLA": 0.05}},
	}}
	server := NewServer(testStore(), trend, nil, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trend", nil))

	var entries []trendEntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(entries) != 1 || entries[0].Scores["TSLA"] != 0.05 {
		t.Fatalf("unexpected trend payload: %+v", entries)
	}
}

func TestHandleTrendEmptyHistory(t *testing.T) {
	t.Parallel()

	server := NewServer(testStore(), &stubTrend{}, nil, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trend", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("empty history must not error, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty list, got %q", body)
	}
}

type stubSource struct {
	raws []domain.RawArticle
}

func (s *stubSource) Fetch(context.Context) ([]domain.RawArticle, error) {
	return s.raws, nil
}

type stubClassifier struct{}

func (stubClassifier) Classify(context.Context, string) (domain.Sentiment, error) {
	return domain.Sentiment{Label: domain.LabelPositive, Confidence: 0.9}, nil
}

func TestHandleRefreshRunsCycle(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	source := &stubSource{raws: []domain.RawArticle{
		{"title": "headline", "company": "TSLA", "link": "https://example.com/1"},
	}}
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   source,
		Store:    store,
		Analyzer: analyze.New(stubClassifier{}, 0, nil),
		Trend:    &stubTrend{},
	})
	runner := usecase.NewRunner(pipeline, 0, nil)

	server := NewServer(store, &stubTrend{}, runner, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}

	var report domain.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Found != 1 || report.Added != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestHandleRefreshWithoutRunner(t *testing.T) {
	t.Parallel()

	server := NewServer(testStore(), &stubTrend{}, nil, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
