package trend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"MarketSentiment/internal/domain"
	"MarketSentiment/internal/ports"
)

// Recorder keeps the append-only trend history in a JSON file. Entries are
// only ever appended; writes go through a temp file plus rename so an
// interrupted process never leaves a half-written history.
type Recorder struct {
	path string
}

var _ ports.TrendRecorder = (*Recorder)(nil)

// NewRecorder points the recorder at a history file; the file and its
// directory are created lazily on first append.
func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

type historyEntry struct {
	Timestamp string             `json:"timestamp"`
	Scores    map[string]float64 `json:"scores"`
}

// Append reads the existing history, appends one entry, and writes the file
// back atomically. Single-writer is assumed (the pipeline runs one cycle at
// a time).
func (r *Recorder) Append(_ context.Context, snapshot domain.Snapshot) error {
	entries, err := r.readEntries()
	if err != nil {
		return err
	}

	entries = append(entries, historyEntry{
		Timestamp: snapshot.Timestamp.UTC().Format(time.RFC3339),
		Scores:    snapshot.Scores,
	})

	return writeJSONAtomic(r.path, entries)
}

// History returns the ordered snapshot list. A missing or empty file reads
// as an empty history, not an error.
func (r *Recorder) History(_ context.Context) ([]domain.Snapshot, error) {
	entries, err := r.readEntries()
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.Snapshot, 0, len(entries))
	for _, entry := range entries {
		ts, err := time.Parse(time.RFC3339, entry.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse history timestamp %q: %w", entry.Timestamp, err)
		}
		snapshots = append(snapshots, domain.Snapshot{Timestamp: ts, Scores: entry.Scores})
	}
	return snapshots, nil
}

func (r *Recorder) readEntries() ([]historyEntry, error) {
	raw, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var entries []historyEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	return entries, nil
}

// writeJSONAtomic marshals v and replaces path via temp file + rename.
func writeJSONAtomic(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
