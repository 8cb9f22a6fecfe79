package assess

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nvandessel/mnemosyne/internal/logging"
	"github.com/nvandessel/mnemosyne/internal/store"
)

// Result is everything one analysis produces.
type Result struct {
	ID         string     `json:"id,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
	Payload    Payload    `json:"payload"`
	Score      Score      `json:"score"`
	Gaps       []Gap      `json:"gaps"`
	Insights   []string   `json:"insights"`
	Levers     []string   `json:"levers"`
	Momentum   float64    `json:"momentum"`
	Fatigue    float64    `json:"fatigue"`
	Stagnation float64    `json:"stagnation"`
	Scenarios  []Scenario `json:"scenarios"`
	Timeline   []int      `json:"timeline"`
	Plan       WeeklyPlan `json:"plan"`
}

// Analyze runs the full pipeline on p. previous holds earlier scores,
// oldest first, and only feeds the stagnation measure.
func Analyze(p Payload, previous []int) Result {
	score := ScorePayload(p)
	gaps := Gaps(score)
	momentum := Momentum(p)
	fatigue := Fatigue(p)
	stagnation := Stagnation(previous)

	insights := Insights(gaps)
	if insights == nil {
		insights = []string{}
	}

	return Result{
		Payload:    p,
		Score:      score,
		Gaps:       gaps,
		Insights:   insights,
		Levers:     Levers(gaps, p.SuccessRate),
		Momentum:   momentum,
		Fatigue:    fatigue,
		Stagnation: stagnation,
		Scenarios:  Scenarios(score.Value, momentum, fatigue),
		Timeline:   Timeline(score.Value, momentum, fatigue),
		Plan: BuildPlan(PlanInputs{
			Mode:        p.Mode,
			Gaps:        gaps,
			Fatigue:     fatigue,
			SuccessRate: p.SuccessRate,
			Stagnation:  stagnation,
		}),
	}
}

// Engine runs analyses against the stored history.
type Engine struct {
	store  store.BlobStore
	logger *slog.Logger
	trace  *logging.TraceLogger
	now    func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithTrace sets the JSONL event trace.
func WithTrace(t *logging.TraceLogger) EngineOption {
	return func(e *Engine) { e.trace = t }
}

// WithClock replaces time.Now for entry timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine over bs.
func NewEngine(bs store.BlobStore, opts ...EngineOption) *Engine {
	e := &Engine{store: bs, logger: logging.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run extracts, analyzes and, when record is true, appends the result to
// the history log.
func (e *Engine) Run(ctx context.Context, in Input, record bool) (Result, error) {
	p, err := Extract(in)
	if err != nil {
		return Result{}, err
	}

	history, err := LoadHistory(ctx, e.store)
	if err != nil {
		return Result{}, err
	}

	res := Analyze(p, Scores(history))
	res.Timestamp = e.now().UTC()

	fields := map[string]any{
		"score":      res.Score.Value,
		"momentum":   res.Momentum,
		"fatigue":    res.Fatigue,
		"stagnation": res.Stagnation,
		"branch":     string(res.Plan.Branch),
		"mode":       string(p.Mode),
	}
	if e.trace.Verbose() {
		fields["payload"] = p
	}
	e.trace.Log("analysis", fields)
	e.logger.Debug("assessment analyzed", "score", res.Score.Value, "history", len(history))

	if !record {
		return res, nil
	}

	res.ID = uuid.NewString()
	entry := HistoryEntry{
		ID:        res.ID,
		Timestamp: res.Timestamp,
		Payload:   p,
		Score:     res.Score.Value,
		Momentum:  res.Momentum,
	}
	if _, err := AppendHistory(ctx, e.store, entry); err != nil {
		return Result{}, err
	}
	return res, nil
}

// History returns the n most recent stored analyses, oldest first. n <= 0
// returns all of them.
func (e *Engine) History(ctx context.Context, n int) ([]HistoryEntry, error) {
	entries, err := LoadHistory(ctx, e.store)
	if err != nil {
		return nil, err
	}
	return Last(entries, n), nil
}
