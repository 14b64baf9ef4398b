package aggregate

import "MarketSentiment/internal/domain"

// ByCompany computes the confidence-weighted signed sentiment per company.
//
// For each company group the score is the mean of sign(label) * confidence
// over classified articles. Unclassified articles count in neither the
// numerator nor the denominator. A group with no classified articles scores
// exactly 0.0, so "no data" and "perfectly balanced" look the same here;
// DetailedStats exposes the counts when callers need to tell them apart.
func ByCompany(articles []domain.Article) map[string]float64 {
	scores := make(map[string]float64, 8)
	for company, group := range groupByCompany(articles) {
		scores[company] = averageSentiment(group)
	}
	return scores
}

// DetailedStats returns per-company aggregate score plus categorical counts.
// Only classified articles are counted, which keeps the invariant
// positive + neutral + negative == totalArticles.
func DetailedStats(articles []domain.Article) map[string]domain.CompanyStats {
	stats := make(map[string]domain.CompanyStats, 8)
	for company, group := range groupByCompany(articles) {
		entry := domain.CompanyStats{AvgSentiment: averageSentiment(group)}
		for _, article := range group {
			if !article.Classified() {
				continue
			}
			entry.TotalArticles++
			switch article.Sentiment.Label {
			case domain.LabelPositive:
				entry.Positive++
			case domain.LabelNegative:
				entry.Negative++
			default:
				entry.Neutral++
			}
		}
		stats[company] = entry
	}
	return stats
}

func groupByCompany(articles []domain.Article) map[string][]domain.Article {
	groups := make(map[string][]domain.Article, 8)
	for _, article := range articles {
		groups[article.Company] = append(groups[article.Company], article)
	}
	return groups
}

func averageSentiment(articles []domain.Article) float64 {
	var sum float64
	var labeled int
	for _, article := range articles {
		if !article.Classified() {
			continue
		}
		sum += article.Sentiment.Label.Sign() * article.Sentiment.Confidence
		labeled++
	}
	if labeled == 0 {
		return 0.0
	}
	return sum / float64(labeled)
}
