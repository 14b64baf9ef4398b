package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"MarketSentiment/internal/domain"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/classify" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header: %q", got)
		}

		var payload struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if payload.Text != "Tesla beats estimates" {
			t.Errorf("unexpected text: %q", payload.Text)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"label":      "positive",
			"confidence": 0.92,
			"distribution": map[string]float64{
				"negative": 0.02,
				"neutral":  0.06,
				"positive": 0.92,
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	sentiment, err := client.Classify(context.Background(), "Tesla beats estimates")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}

	if sentiment.Label != domain.LabelPositive {
		t.Fatalf("unexpected label: %s", sentiment.Label)
	}
	if sentiment.Confidence != 0.92 {
		t.Fatalf("unexpected confidence: %v", sentiment.Confidence)
	}
	if sentiment.Distribution[domain.LabelNeutral] != 0.06 {
		t.Fatalf("unexpected distribution: %+v", sentiment.Distribution)
	}
}

func TestClassifyRejectsUnknownLabel(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"label": "bullish", "confidence": 0.9})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	if _, err := client.Classify(context.Background(), "text"); err == nil {
		t.Fatal("expected an error for unknown label")
	}
}

func TestClassifyNonOKStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	if _, err := client.Classify(context.Background(), "text"); err == nil {
		t.Fatal("expected an error for non-200 status")
	}
}
