package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"MarketSentiment/internal/aggregate"
	"MarketSentiment/internal/domain"
	"MarketSentiment/internal/ports"
	"MarketSentiment/internal/usecase"
)

// Server exposes the read-side of the system to the UI plus a manual
// refresh trigger. All GET endpoints are pure reads.
type Server struct {
	store  ports.ArticleStore
	trend  ports.TrendRecorder
	runner *usecase.Runner
	logger *slog.Logger
	router chi.Router
}

// NewServer wires the HTTP routes.
func NewServer(store ports.ArticleStore, trend ports.TrendRecorder, runner *usecase.Runner, logger *slog.Logger) *Server {
	s := &Server{store: store, trend: trend, runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/articles", s.handleArticles)
		r.Get("/articles/{company}", s.handleArticlesByCompany)
		r.Get("/sentiment/scores", s.handleScores)
		r.Get("/sentiment/stats", s.handleStats)
		r.Get("/trend", s.handleTrend)
		r.Post("/refresh", s.handleRefresh)
	})

	s.router = r
	return s
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

type articleResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Content     string             `json:"content,omitempty"`
	Company     string             `json:"company"`
	Source      string             `json:"source"`
	URL         string             `json:"url,omitempty"`
	PublishedAt string             `json:"publishedAt,omitempty"`
	Sentiment   *sentimentResponse `json:"sentiment,omitempty"`
}

type sentimentResponse struct {
	Label        domain.Label             `json:"label"`
	Confidence   float64                  `json:"confidence"`
	Distribution map[domain.Label]float64 `json:"distribution,omitempty"`
}

type trendEntryResponse struct {
	Timestamp time.Time          `json:"timestamp"`
	Scores    map[string]float64 `json:"scores"`
}

func toArticleResponse(article domain.Article) articleResponse {
	resp := articleResponse{
		ID:          article.ID,
		Title:       article.Title,
		Content:     article.Content,
		Company:     article.Company,
		Source:      article.Source,
		URL:         article.URL,
		PublishedAt: article.PublishedAt,
	}
	if article.Sentiment != nil {
		resp.Sentiment = &sentimentResponse{
			Label:        article.Sentiment.Label,
			Confidence:   article.Sentiment.Confidence,
			Distribution: article.Sentiment.Distribution,
		}
	}
	return resp
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.store.FetchAll(r.Context())
	if err != nil {
		s.serverError(w, "fetch articles", err)
		return
	}
	s.writeArticles(w, articles)
}

func (s *Server) handleArticlesByCompany(w http.ResponseWriter, r *http.Request) {
	company := chi.URLParam(r, "company")
	articles, err := s.store.FetchByCompany(r.Context(), company)
	if err != nil {
		s.serverError(w, "fetch articles by company", err)
		return
	}
	s.writeArticles(w, articles)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	articles, err := s.store.FetchAll(r.Context())
	if err != nil {
		s.serverError(w, "fetch articles", err)
		return
	}
	s.writeJSON(w, http.StatusOK, aggregate.ByCompany(articles))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	articles, err := s.store.FetchAll(r.Context())
	if err != nil {
		s.serverError(w, "fetch articles", err)
		return
	}
	s.writeJSON(w, http.StatusOK, aggregate.DetailedStats(articles))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	history, err := s.trend.History(r.Context())
	if err != nil {
		s.serverError(w, "read trend history", err)
		return
	}

	entries := make([]trendEntryResponse, 0, len(history))
	for _, snapshot := range history {
		entries = append(entries, trendEntryResponse{
			Timestamp: snapshot.Timestamp,
			Scores:    snapshot.Scores,
		})
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		http.Error(w, "refresh not available", http.StatusNotImplemented)
		return
	}

	// Detach the cycle from the request context so a closed connection
	// cannot abort a half-finished ingestion.
	done, err := s.runner.Trigger(context.WithoutCancel(r.Context()))
	if errors.Is(err, usecase.ErrCycleInFlight) {
		http.Error(w, "a refresh cycle is already running", http.StatusConflict)
		return
	}
	if err != nil {
		s.serverError(w, "trigger cycle", err)
		return
	}

	result := <-done
	if result.Err != nil {
		s.serverError(w, "run cycle", result.Err)
		return
	}
	s.writeJSON(w, http.StatusOK, result.Report)
}

func (s *Server) writeArticles(w http.ResponseWriter, articles []domain.Article) {
	responses := make([]articleResponse, 0, len(articles))
	for _, article := range articles {
		responses = append(responses, toArticleResponse(article))
	}
	s.writeJSON(w, http.StatusOK, responses)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && s.logger != nil {
		s.logger.Warn("encoding response failed", "error", err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, action string, err error) {
	if s.logger != nil {
		s.logger.Error(action+" failed", "error", err)
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}
