package aggregate

import (
	"math"
	"testing"

	"MarketSentiment/internal/domain"
)

func classified(company string, label domain.Label, confidence float64) domain.Article {
	return domain.Article{
		Title:     "t",
		Company:   company,
		Sentiment: &domain.Sentiment{Label: label, Confidence: confidence},
	}
}

func TestByCompanyWeightedMean(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		classified("Tesla", domain.LabelPositive, 0.9),
		classified("Tesla", domain.LabelNegative, 0.8),
	}

	scores := ByCompany(articles)
	want := (0.9 - 0.8) / 2
	if math.Abs(scores["Tesla"]-want) > 1e-9 {
		t.Fatalf("expected %.4f, got %.4f", want, scores["Tesla"])
	}
}

func TestByCompanyExcludesUnclassified(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		classified("Apple", domain.LabelPositive, 0.6),
		{Title: "pending", Company: "Apple"},
	}

	scores := ByCompany(articles)
	if math.Abs(scores["Apple"]-0.6) > 1e-9 {
		t.Fatalf("unclassified article must not dilute the mean, got %.4f", scores["Apple"])
	}
}

func TestByCompanyZeroConvention(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		{Title: "pending one", Company: "Nvidia"},
		{Title: "pending two", Company: "Nvidia"},
	}

	scores := ByCompany(articles)
	score, ok := scores["Nvidia"]
	if !ok {
		t.Fatal("company with only unclassified articles must still appear")
	}
	if score != 0.0 {
		t.Fatalf("expected exactly 0.0, got %v", score)
	}
}

func TestByCompanyRange(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		classified("A", domain.LabelPositive, 1.0),
		classified("A", domain.LabelPositive, 1.0),
		classified("B", domain.LabelNegative, 1.0),
		classified("C", domain.LabelNeutral, 0.4),
		classified("C", domain.LabelPositive, 0.2),
		classified("C", domain.LabelNegative, 0.95),
	}

	for company, score := range ByCompany(articles) {
		if score < -1 || score > 1 {
			t.Fatalf("score for %s out of range: %v", company, score)
		}
	}
}

func TestDetailedStatsCountsSum(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		classified("Tesla", domain.LabelPositive, 0.9),
		classified("Tesla", domain.LabelNeutral, 0.5),
		classified("Tesla", domain.LabelNegative, 0.7),
		classified("Apple", domain.LabelPositive, 0.8),
		{Title: "pending", Company: "Apple"},
	}

	for company, stats := range DetailedStats(articles) {
		if stats.Positive+stats.Neutral+stats.Negative != stats.TotalArticles {
			t.Fatalf("count invariant broken for %s: %+v", company, stats)
		}
	}
}

func TestDetailedStatsValues(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		classified("Tesla", domain.LabelPositive, 0.9),
		classified("Tesla", domain.LabelNegative, 0.8),
	}

	stats := DetailedStats(articles)["Tesla"]
	if stats.TotalArticles != 2 || stats.Positive != 1 || stats.Negative != 1 || stats.Neutral != 0 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	want := (0.9 - 0.8) / 2
	if math.Abs(stats.AvgSentiment-want) > 1e-9 {
		t.Fatalf("expected avg %.4f, got %.4f", want, stats.AvgSentiment)
	}
}
