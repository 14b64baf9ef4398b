package domain

import "strings"

// Label is one of the three sentiment categories produced by the classifier.
type Label string

const (
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
	LabelPositive Label = "positive"
)

// Sign converts a label to its signed numeric value used in aggregation.
func (l Label) Sign() float64 {
	switch l {
	case LabelPositive:
		return 1
	case LabelNegative:
		return -1
	default:
		return 0
	}
}

// Valid reports whether the label is one of the three known categories.
func (l Label) Valid() bool {
	return l == LabelNegative || l == LabelNeutral || l == LabelPositive
}

// Sentiment holds one classification result. Confidence is the probability of
// the predicted label, not a signed sentiment value.
type Sentiment struct {
	Label        Label
	Confidence   float64
	Distribution map[Label]float64
}

// NeutralDefault is the fixed classification assigned to empty input text and
// to articles whose classification failed.
func NeutralDefault() Sentiment {
	return Sentiment{
		Label:      LabelNeutral,
		Confidence: 1.0,
		Distribution: map[Label]float64{
			LabelNegative: 0,
			LabelNeutral:  1,
			LabelPositive: 0,
		},
	}
}

// Article is the canonical news item, independent of its scraped source
// format. Sentiment stays nil until the article has been classified, so the
// label and confidence can never be set separately.
type Article struct {
	ID          int64
	Title       string
	Content     string
	Company     string
	Source      string
	URL         string
	PublishedAt string
	Sentiment   *Sentiment
}

// AnalysisText returns the text submitted to the classifier: the title and
// content joined, with either part skipped when blank.
func (a Article) AnalysisText() string {
	title := strings.TrimSpace(a.Title)
	content := strings.TrimSpace(a.Content)
	switch {
	case title == "":
		return content
	case content == "":
		return title
	default:
		return title + ". " + content
	}
}

// Classified reports whether the article carries a classification.
func (a Article) Classified() bool {
	return a.Sentiment != nil
}

// RawArticle is a heterogeneous scraped record before normalization. Field
// names vary across sources; nothing past the normalizer sees this shape.
type RawArticle map[string]any

// SaveOutcome describes the result of persisting one article.
type SaveOutcome int

const (
	// SaveInserted means a new row was written.
	SaveInserted SaveOutcome = iota
	// SaveDuplicate means the (url, company) pair already exists; the stored
	// record was left untouched.
	SaveDuplicate
	// SaveRejected means the article lacks a resolvable URL and cannot be
	// deduplicated.
	SaveRejected
)

func (o SaveOutcome) String() string {
	switch o {
	case SaveInserted:
		return "inserted"
	case SaveDuplicate:
		return "duplicate"
	case SaveRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// CompanyStats summarizes classified articles for one company. The three
// counts always sum to TotalArticles.
type CompanyStats struct {
	AvgSentiment  float64 `json:"avgSentiment"`
	TotalArticles int     `json:"totalArticles"`
	Positive      int     `json:"positiveCount"`
	Neutral       int     `json:"neutralCount"`
	Negative      int     `json:"negativeCount"`
}
