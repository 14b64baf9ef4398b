package trend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"MarketSentiment/internal/domain"
)

func TestHistoryMissingFile(t *testing.T) {
	t.Parallel()

	recorder := NewRecorder(filepath.Join(t.TempDir(), "trend_history.json"))

	history, err := recorder.History(context.Background())
	if err != nil {
		t.Fatalf("History on missing file: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(history))
	}
}

func TestHistoryEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trend_history.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	history, err := NewRecorder(path).History(context.Background())
	if err != nil {
		t.Fatalf("History on empty file: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(history))
	}
}

func TestAppendGrowsHistoryInOrder(t *testing.T) {
	t.Parallel()

	recorder := NewRecorder(filepath.Join(t.TempDir(), "trend_history.json"))
	ctx := context.Background()

	first := domain.Snapshot{
		Timestamp: time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC),
		Scores:    map[string]float64{"TSLA": 0.05},
	}
	second := domain.Snapshot{
		Timestamp: time.Date(2026, time.January, 12, 10, 0, 0, 0, time.UTC),
		Scores:    map[string]float64{"TSLA": -0.2, "AAPL": 0.4},
	}

	if err := recorder.Append(ctx, first); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := recorder.Append(ctx, second); err != nil {
		t.Fatalf("second append: %v", err)
	}

	history, err := recorder.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if !history[0].Timestamp.Equal(first.Timestamp) {
		t.Fatalf("first entry out of order: %v", history[0].Timestamp)
	}
	if history[0].Scores["TSLA"] != 0.05 {
		t.Fatalf("first entry scores changed: %+v", history[0].Scores)
	}
	if history[1].Scores["AAPL"] != 0.4 {
		t.Fatalf("second entry scores wrong: %+v", history[1].Scores)
	}
}

func TestAppendCreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "deeper", "trend_history.json")
	recorder := NewRecorder(path)

	err := recorder.Append(context.Background(), domain.Snapshot{
		Timestamp: time.Now(),
		Scores:    map[string]float64{"TSLA": 0},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("history file not created: %v", err)
	}
}

func TestAppendLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	recorder := NewRecorder(filepath.Join(dir, "trend_history.json"))

	err := recorder.Append(context.Background(), domain.Snapshot{
		Timestamp: time.Now(),
		Scores:    map[string]float64{},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the history file, found %d entries", len(entries))
	}
}

func TestArchiveAppend(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "archive.json")
	archive := NewArchive(path)
	ctx := context.Background()

	raws := []domain.RawArticle{
		{"title": "one", "company": "TSLA"},
		{"title": "two", "company": "TSLA"},
	}
	if err := archive.Append(ctx, time.Now(), raws); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := archive.Append(ctx, time.Now(), raws[:1]); err != nil {
		t.Fatalf("second Append: %v", err)
	}

	entries, err := archive.readEntries()
	if err != nil {
		t.Fatalf("readEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 archive entries, got %d", len(entries))
	}
	if entries[0].Count != 2 || entries[1].Count != 1 {
		t.Fatalf("unexpected counts: %+v", entries)
	}
}
