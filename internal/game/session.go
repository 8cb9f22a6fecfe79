package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nvandessel/mnemosyne/internal/constants"
	"github.com/nvandessel/mnemosyne/internal/logging"
	"github.com/nvandessel/mnemosyne/internal/puzzle"
	"github.com/nvandessel/mnemosyne/internal/rng"
	"github.com/nvandessel/mnemosyne/internal/store"
)

var (
	// ErrNoActivePuzzle is returned when there is nothing to answer or hint:
	// no run, a finished run, or a puzzle already answered.
	ErrNoActivePuzzle = errors.New("no active puzzle")

	// ErrPuzzlePending is returned by Advance while the current puzzle is
	// still unanswered.
	ErrPuzzlePending = errors.New("current puzzle has not been answered")
)

// SubmitResult reports how an answer was judged.
type SubmitResult struct {
	Correct  bool   `json:"correct"`
	Expected string `json:"expected,omitempty"`
	View     View   `json:"view"`
}

// HintResult reports a hint request. A refused hint is not an error.
type HintResult struct {
	Granted   bool   `json:"granted"`
	Text      string `json:"text"`
	Remaining int    `json:"remaining"`
	View      View   `json:"view"`
}

// Session owns one run and persists it after every mutation.
// All public methods are safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	store    store.BlobStore
	logger   *slog.Logger
	trace    *logging.TraceLogger
	now      func() time.Time
	state    *RunState
	src      *rng.XorShift32
	feedback Feedback
	debug    bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithTrace sets the JSONL event trace. nil disables tracing.
func WithTrace(t *logging.TraceLogger) Option {
	return func(s *Session) { s.trace = t }
}

// WithClock replaces time.Now for random seeds.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithDebug opens the developer panel from the start.
func WithDebug(on bool) Option {
	return func(s *Session) { s.debug = on }
}

// NewSession creates a session with no run loaded.
func NewSession(bs store.BlobStore, opts ...Option) *Session {
	s := &Session{
		store:    bs,
		logger:   logging.Discard(),
		now:      time.Now,
		feedback: Feedback{Tone: ToneNeutral},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRun starts a fresh run for seed, records the seed in the history and
// generates the first puzzle.
func (s *Session) NewRun(ctx context.Context, seed int64) (View, error) {
	if seed <= 0 {
		return View{}, ErrInvalidSeed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.newRunLocked(ctx, seed)
}

// RandomRun starts a run with a clock-derived seed.
func (s *Session) RandomRun(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.newRunLocked(ctx, RandomSeed(s.now()))
}

func (s *Session) newRunLocked(ctx context.Context, seed int64) (View, error) {
	if _, err := PushSeedHistory(ctx, s.store, seed); err != nil {
		return View{}, err
	}

	st := NewRunState(seed)
	st.RunID = uuid.NewString()
	s.state = st
	s.src = rng.New(seed)

	s.logger.Debug("run started", "seed", seed, "run_id", st.RunID)
	s.trace.Log("run_start", map[string]any{"run_id": st.RunID, "seed": seed})

	return s.nextPuzzleLocked(ctx)
}

// Resume restores the saved run. It reports false when there is no save or
// the save is unreadable, leaving the session untouched.
func (s *Session) Resume(ctx context.Context) (bool, View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.resumeLocked(ctx)
	if err != nil || !ok {
		return ok, View{}, err
	}
	if s.state.Finished {
		s.feedback = Feedback{Message: MsgSessionOver, Tone: ToneNeutral}
	} else {
		s.feedback = Feedback{Message: MsgRestored, Tone: ToneGood}
	}
	return true, s.viewLocked(), nil
}

func (s *Session) resumeLocked(ctx context.Context) (bool, error) {
	data, err := s.store.Get(ctx, constants.SaveKey)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading save: %w", err)
	}

	var st RunState
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("ignoring unreadable save", "error", err)
		return false, nil
	}
	if st.Seed <= 0 {
		s.logger.Warn("ignoring save with invalid seed", "seed", st.Seed)
		return false, nil
	}

	st.normalize()
	if st.RunID == "" {
		st.RunID = uuid.NewString()
	}
	s.state = &st
	s.src = rng.New(rng.RestoreSeed(st.Seed, st.Round, st.ErrorsTotal))

	s.logger.Debug("run restored", "seed", st.Seed, "round", st.Round, "finished", st.Finished)
	s.trace.Log("run_restore", map[string]any{"run_id": st.RunID, "seed": st.Seed, "round": st.Round})

	// A save taken between Submit and Advance has no open puzzle.
	if !st.Finished && (st.Resolved || st.Current == nil) {
		if _, err := s.nextPuzzleLocked(ctx); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Bootstrap resumes the saved run when there is one and starts a random
// run otherwise.
func (s *Session) Bootstrap(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.resumeLocked(ctx)
	if err != nil {
		return View{}, err
	}
	if !ok {
		return s.newRunLocked(ctx, RandomSeed(s.now()))
	}
	if s.state.Finished {
		s.feedback = Feedback{Message: MsgSessionOver, Tone: ToneNeutral}
	} else {
		s.feedback = Feedback{Message: MsgAutoResumed, Tone: ToneGood}
	}
	return s.viewLocked(), nil
}

// Restart discards the save and starts a random run.
func (s *Session) Restart(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, constants.SaveKey); err != nil {
		return View{}, fmt.Errorf("clearing save: %w", err)
	}
	return s.newRunLocked(ctx, RandomSeed(s.now()))
}

// Submit judges input against the current puzzle and applies the outcome.
// The puzzle stays on screen, marked resolved, until Advance.
func (s *Session) Submit(ctx context.Context, input string) (SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st == nil || st.Finished || st.Current == nil || st.Resolved {
		return SubmitResult{}, ErrNoActivePuzzle
	}

	p := st.Current
	correct := p.Check(input)
	ApplyOutcome(st, s.src, correct)
	st.Resolved = true

	res := SubmitResult{Correct: correct}
	if correct {
		s.feedback = Feedback{Message: MsgCorrect, Tone: ToneGood}
	} else {
		res.Expected = p.Answer
		s.feedback = Feedback{Message: WrongMessage(p.Answer), Tone: ToneBad}
	}

	fields := map[string]any{
		"run_id":  st.RunID,
		"round":   st.Round,
		"kind":    string(p.Kind),
		"correct": correct,
		"stats":   st.Stats,
		"streak":  st.StreakErrors,
	}
	if s.trace.Verbose() {
		fields["input"] = input
		fields["answer"] = p.Answer
	}
	s.trace.Log("outcome", fields)

	if err := s.saveLocked(ctx); err != nil {
		return SubmitResult{}, err
	}
	res.View = s.viewLocked()
	return res, nil
}

// Advance moves past an answered puzzle: the next puzzle, or the ending
// once the round cap is reached. It is a no-op on a finished run.
func (s *Session) Advance(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return View{}, ErrNoActivePuzzle
	}
	if s.state.Finished {
		return s.viewLocked(), nil
	}
	if s.state.Current != nil && !s.state.Resolved {
		return View{}, ErrPuzzlePending
	}
	return s.nextPuzzleLocked(ctx)
}

// Hint spends one hint when the allowance permits.
func (s *Session) Hint(ctx context.Context) (HintResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st == nil || st.Finished || st.Current == nil || st.Resolved {
		return HintResult{}, ErrNoActivePuzzle
	}

	allowed := HintAllowance(st)
	if st.HintUses >= allowed {
		s.feedback = Feedback{Message: MsgNoMoreHints, Tone: ToneBad}
		return HintResult{Granted: false, Text: MsgNoMoreHints, View: s.viewLocked()}, nil
	}

	applyHintCost(st)
	text := HintText(st)
	s.feedback = Feedback{Message: text, Tone: ToneNeutral}
	s.trace.Log("hint", map[string]any{"run_id": st.RunID, "round": st.Round, "hint_uses": st.HintUses, "allowance": allowed})

	if err := s.saveLocked(ctx); err != nil {
		return HintResult{}, err
	}
	return HintResult{
		Granted:   true,
		Text:      text,
		Remaining: max(0, HintAllowance(st)-st.HintUses),
		View:      s.viewLocked(),
	}, nil
}

// ToggleDebug flips the developer panel and returns the new setting.
func (s *Session) ToggleDebug() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.debug = !s.debug
	if s.debug {
		s.feedback = Feedback{Message: MsgDevModeOn, Tone: ToneNeutral}
	} else {
		s.feedback = Feedback{Message: MsgDevModeOff, Tone: ToneNeutral}
	}
	return s.debug
}

// View renders the current screen. Before any run is loaded it is empty.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return View{Feedback: s.feedback}
	}
	return s.viewLocked()
}

// State returns a copy of the run state, or nil before any run is loaded.
func (s *Session) State() *RunState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return nil
	}
	return s.state.Clone()
}

// nextPuzzleLocked reseeds, generates and remembers the next puzzle, or
// ends the run at the round cap.
func (s *Session) nextPuzzleLocked(ctx context.Context) (View, error) {
	st := s.state
	if st.Round >= constants.MaxRounds {
		return s.endRunLocked(ctx)
	}

	s.src = rng.New(rng.PuzzleSeed(st.Seed, st.Round, st.ErrorsTotal, st.HintUses))
	level := Difficulty(st)
	p := puzzle.Generate(s.src, st.Round, puzzle.Context{
		Level:      level,
		Lucidity:   st.Stats.Lucidity,
		Stress:     st.Stats.Stress,
		MemoryBank: st.MemoryBank,
	})
	st.Current = &p
	st.Resolved = false
	st.remember(p.MemoryToken)
	st.Round++

	s.feedback = Feedback{Message: MsgPuzzleLoaded, Tone: ToneNeutral}
	s.logger.Debug("puzzle generated", "round", st.Round, "kind", p.Kind, "level", level)

	if err := s.saveLocked(ctx); err != nil {
		return View{}, err
	}
	return s.viewLocked(), nil
}

func (s *Session) endRunLocked(ctx context.Context) (View, error) {
	st := s.state
	st.Finished = true
	st.Current = nil
	st.Resolved = false

	e := ResolveEnding(st)
	s.feedback = Feedback{Message: MsgSessionOver, Tone: ToneNeutral}
	s.logger.Info("run finished", "seed", st.Seed, "ending", e.ID, "errors", st.ErrorsTotal)
	s.trace.Log("ending", map[string]any{"run_id": st.RunID, "ending": string(e.ID), "stats": st.Stats, "errors": st.ErrorsTotal})

	if err := s.saveLocked(ctx); err != nil {
		return View{}, err
	}
	return s.viewLocked(), nil
}

func (s *Session) saveLocked(ctx context.Context) error {
	if err := store.PutJSON(ctx, s.store, constants.SaveKey, s.state); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

func (s *Session) viewLocked() View {
	return BuildView(s.state, s.feedback, s.debug)
}
