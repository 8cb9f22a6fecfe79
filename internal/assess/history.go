package assess

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nvandessel/mnemosyne/internal/constants"
	"github.com/nvandessel/mnemosyne/internal/store"
)

// HistoryEntry is one stored analysis.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   Payload   `json:"payload"`
	Score     int       `json:"score"`
	Momentum  float64   `json:"momentum"`
}

// LoadHistory returns the stored analyses, oldest first. A missing or
// corrupt log reads as empty.
func LoadHistory(ctx context.Context, bs store.BlobStore) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	ok, err := store.GetJSON(ctx, bs, constants.AssessmentHistoryKey, &entries)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return nil, fmt.Errorf("loading assessment history: %w", err)
	}
	if !ok || entries == nil {
		return []HistoryEntry{}, nil
	}
	return entries, nil
}

// AppendHistory adds e and drops the oldest entries past the cap.
func AppendHistory(ctx context.Context, bs store.BlobStore, e HistoryEntry) ([]HistoryEntry, error) {
	entries, err := LoadHistory(ctx, bs)
	if err != nil {
		return nil, err
	}

	entries = append(entries, e)
	if over := len(entries) - constants.AssessmentHistoryCap; over > 0 {
		entries = append([]HistoryEntry(nil), entries[over:]...)
	}

	if err := store.PutJSON(ctx, bs, constants.AssessmentHistoryKey, entries); err != nil {
		return nil, fmt.Errorf("saving assessment history: %w", err)
	}
	return entries, nil
}

// Scores extracts the score series, oldest first.
func Scores(entries []HistoryEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Score
	}
	return out
}

// Last returns at most the n most recent entries, oldest first.
func Last(entries []HistoryEntry, n int) []HistoryEntry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[len(entries)-n:]
}
