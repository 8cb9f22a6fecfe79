package assess

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nvandessel/mnemosyne/internal/constants"
	"github.com/nvandessel/mnemosyne/internal/logging"
	"github.com/nvandessel/mnemosyne/internal/store"
)

func TestLoadHistory_MissingOrCorrupt(t *testing.T) {
	ctx := context.Background()
	bs := store.NewMemoryBlobStore()

	entries, err := LoadHistory(ctx, bs)
	if err != nil || len(entries) != 0 {
		t.Fatalf("LoadHistory(missing) = %v, %v", entries, err)
	}

	if err := bs.Put(ctx, constants.AssessmentHistoryKey, []byte("{nope")); err != nil {
		t.Fatal(err)
	}
	entries, err = LoadHistory(ctx, bs)
	if err != nil || len(entries) != 0 {
		t.Fatalf("LoadHistory(corrupt) = %v, %v", entries, err)
	}
}

type brokenStore struct{ store.BlobStore }

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk gone")
}

func TestLoadHistory_StorageError(t *testing.T) {
	_, err := LoadHistory(context.Background(), brokenStore{store.NewMemoryBlobStore()})
	if err == nil {
		t.Fatal("LoadHistory() should surface storage failures")
	}
}

func TestAppendHistory_Cap(t *testing.T) {
	ctx := context.Background()
	bs := store.NewMemoryBlobStore()

	total := constants.AssessmentHistoryCap + 5
	for i := 0; i < total; i++ {
		if _, err := AppendHistory(ctx, bs, HistoryEntry{ID: "x", Score: i}); err != nil {
			t.Fatalf("AppendHistory(%d) error = %v", i, err)
		}
	}

	entries, err := LoadHistory(ctx, bs)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != constants.AssessmentHistoryCap {
		t.Fatalf("len = %d, want %d", len(entries), constants.AssessmentHistoryCap)
	}
	if entries[0].Score != 5 || entries[len(entries)-1].Score != total-1 {
		t.Errorf("kept scores %d..%d, want 5..%d", entries[0].Score, entries[len(entries)-1].Score, total-1)
	}

	last := Last(entries, 3)
	if got := Scores(last); len(got) != 3 || got[2] != total-1 {
		t.Errorf("Scores(Last 3) = %v", got)
	}
	if len(Last(entries, 0)) != len(entries) {
		t.Error("Last(0) should return everything")
	}
}

func TestEngine_Run(t *testing.T) {
	ctx := context.Background()
	bs := store.NewMemoryBlobStore()
	dir := t.TempDir()

	trace := logging.NewTraceLogger(dir, "trace")
	if trace == nil {
		t.Fatal("NewTraceLogger returned nil at trace level")
	}
	defer trace.Close()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	eng := NewEngine(bs, WithTrace(trace), WithClock(func() time.Time { return fixed }))

	in := Input{
		Mode:        constants.ModeRapid,
		Goals:       []string{"finish thesis"},
		Metrics:     DefaultMetrics(),
		SuccessRate: 60,
	}

	res, err := eng.Run(ctx, in, false)
	if err != nil {
		t.Fatalf("Run(dry) error = %v", err)
	}
	if res.ID != "" {
		t.Errorf("dry run ID = %q, want empty", res.ID)
	}
	if h, _ := eng.History(ctx, 0); len(h) != 0 {
		t.Errorf("dry run stored %d entries", len(h))
	}

	for i := 0; i < 3; i++ {
		res, err = eng.Run(ctx, in, true)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	}
	if res.ID == "" || !res.Timestamp.Equal(fixed) {
		t.Errorf("result ID %q timestamp %v", res.ID, res.Timestamp)
	}
	// two identical earlier scores are flat
	if res.Stagnation != 1 {
		t.Errorf("Stagnation = %v, want 1", res.Stagnation)
	}
	if len(res.Plan.Actions) != 3 || len(res.Plan.Reflections) != 0 {
		t.Errorf("rapid plan = %+v", res.Plan)
	}

	h, err := eng.History(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(h) != 2 || h[1].ID != res.ID || h[1].Score != res.Score.Value {
		t.Errorf("History(2) = %+v", h)
	}
}

func TestEngine_RunRejectsBadInput(t *testing.T) {
	eng := NewEngine(store.NewMemoryBlobStore())
	if _, err := eng.Run(context.Background(), Input{Mode: "loud"}, true); err == nil {
		t.Error("Run() should reject an invalid mode")
	}
}
