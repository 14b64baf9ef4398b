package domain

import "time"

// Snapshot is one timestamped aggregation result appended to trend history.
// History entries are never edited after being written.
type Snapshot struct {
	Timestamp time.Time
	Scores    map[string]float64
}

// Report summarizes one pipeline cycle for the caller.
type Report struct {
	Found         int                `json:"found"`
	Added         int                `json:"added"`
	Skipped       int                `json:"skipped"`
	CompanyScores map[string]float64 `json:"companyScores"`
}
