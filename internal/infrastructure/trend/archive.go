package trend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"MarketSentiment/internal/domain"
)

// Archive appends each cycle's raw scraped records to a JSON file for audit.
// It shares the recorder's atomic-write discipline. Archiving is best-effort
// infrastructure; the pipeline logs but does not fail on archive errors.
type Archive struct {
	path string
}

// NewArchive points the archive at its file.
func NewArchive(path string) *Archive {
	return &Archive{path: path}
}

type archiveEntry struct {
	Timestamp string              `json:"timestamp"`
	Count     int                 `json:"count"`
	Articles  []domain.RawArticle `json:"articles"`
}

// Append records one batch of raw articles under the cycle timestamp.
func (a *Archive) Append(_ context.Context, at time.Time, raws []domain.RawArticle) error {
	entries, err := a.readEntries()
	if err != nil {
		return err
	}

	entries = append(entries, archiveEntry{
		Timestamp: at.UTC().Format(time.RFC3339),
		Count:     len(raws),
		Articles:  raws,
	})

	return writeJSONAtomic(a.path, entries)
}

func (a *Archive) readEntries() ([]archiveEntry, error) {
	raw, err := os.ReadFile(a.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var entries []archiveEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}
	return entries, nil
}
