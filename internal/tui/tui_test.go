package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nvandessel/mnemosyne/internal/assess"
	"github.com/nvandessel/mnemosyne/internal/constants"
	"github.com/nvandessel/mnemosyne/internal/game"
	"github.com/nvandessel/mnemosyne/internal/store"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m tea.Model, msgs ...tea.Msg) (tea.Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		m, cmd = m.Update(msg)
	}
	return m, cmd
}

func newPuzzle(t *testing.T) (PuzzleModel, *game.Session) {
	t.Helper()
	ctx := context.Background()
	s := game.NewSession(store.NewMemoryBlobStore())
	if _, err := s.NewRun(ctx, 12345); err != nil {
		t.Fatal(err)
	}
	return NewPuzzleModel(ctx, s, time.Millisecond), s
}

func TestPuzzleModel_AnswerAndAdvance(t *testing.T) {
	m, s := newPuzzle(t)

	model, cmd := send(t, m, runes("1"), runes("8"), tea.KeyMsg{Type: tea.KeyEnter})
	pm := model.(PuzzleModel)
	if cmd == nil {
		t.Fatal("expected a tick command after answering")
	}
	if !pm.waiting {
		t.Error("model should wait for the advance tick")
	}
	if pm.view.Feedback.Tone != game.ToneGood {
		t.Errorf("feedback tone = %q, want good", pm.view.Feedback.Tone)
	}

	// keys are ignored while waiting
	model, _ = send(t, pm, runes("5"), tea.KeyMsg{Type: tea.KeyEnter})
	if s.State().Round != 1 {
		t.Fatalf("round = %d, want 1 while waiting", s.State().Round)
	}

	model, _ = send(t, model, advanceMsg{})
	pm = model.(PuzzleModel)
	if pm.waiting {
		t.Error("waiting should clear after advance")
	}
	if s.State().Round != 2 || pm.view.RoundLabel != "2/12" {
		t.Errorf("round = %d label %q, want 2", s.State().Round, pm.view.RoundLabel)
	}
}

func TestPuzzleModel_EmptyAnswerIgnored(t *testing.T) {
	m, s := newPuzzle(t)
	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("empty answer should not schedule an advance")
	}
	if s.State().Resolved {
		t.Error("empty answer should not resolve the puzzle")
	}
}

func TestPuzzleModel_Konami(t *testing.T) {
	m, _ := newPuzzle(t)
	keys := []tea.Msg{
		tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyRight},
		runes("d"), runes("b"),
	}
	model, _ := send(t, m, keys...)
	pm := model.(PuzzleModel)
	if pm.view.Debug == nil {
		t.Fatal("Konami sequence should open the developer panel")
	}
	if pm.input.Value() != "" {
		t.Errorf("input = %q, want sequence letters removed", pm.input.Value())
	}
	if !strings.Contains(pm.View(), `"hintAllowance"`) {
		t.Error("view should show the debug JSON")
	}

	model, _ = send(t, model, keys...)
	if model.(PuzzleModel).view.Debug != nil {
		t.Error("second sequence should close the panel")
	}
}

func TestPuzzleModel_KonamiKeepsTypedAnswer(t *testing.T) {
	arrows := []tea.Msg{
		tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyRight},
	}
	tests := []struct {
		name      string
		before    []tea.Msg
		after     []tea.Msg
		want      string
		wantDebug bool
	}{
		{
			name:      "cursor inside answer",
			before:    []tea.Msg{runes("abc"), tea.KeyMsg{Type: tea.KeyLeft}},
			after:     []tea.Msg{runes("d"), runes("b")},
			want:      "abc",
			wantDebug: true,
		},
		{
			name:      "answer ends in d",
			before:    []tea.Msg{runes("17d")},
			after:     []tea.Msg{runes("d"), runes("b")},
			want:      "17d",
			wantDebug: true,
		},
		{
			name:  "broken sequence keeps letters",
			after: []tea.Msg{runes("d"), runes("x")},
			want:  "dx",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newPuzzle(t)
			var msgs []tea.Msg
			msgs = append(msgs, tt.before...)
			msgs = append(msgs, arrows...)
			msgs = append(msgs, tt.after...)
			model, _ := send(t, m, msgs...)
			pm := model.(PuzzleModel)
			if got := pm.input.Value(); got != tt.want {
				t.Errorf("input = %q, want %q", got, tt.want)
			}
			if (pm.view.Debug != nil) != tt.wantDebug {
				t.Errorf("debug open = %v, want %v", pm.view.Debug != nil, tt.wantDebug)
			}
		})
	}
}

func TestPuzzleModel_HintAndQuit(t *testing.T) {
	m, s := newPuzzle(t)
	model, _ := send(t, m, runes("?"))
	if s.State().HintUses != 1 {
		t.Errorf("hint uses = %d, want 1", s.State().HintUses)
	}
	if !strings.Contains(model.View(), "Lucidity") {
		t.Error("view should draw the stat bars")
	}

	_, cmd := send(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should return tea.Quit")
	}
}

func TestStatBar(t *testing.T) {
	for _, v := range []int{-5, 0, 50, 100, 140} {
		bar := statBar("Stress", v)
		if n := strings.Count(bar, "█") + strings.Count(bar, "░"); n != barWidth {
			t.Errorf("statBar(%d) cells = %d, want %d", v, n, barWidth)
		}
	}
}

func newForm(t *testing.T) (FormModel, *assess.Engine) {
	t.Helper()
	eng := assess.NewEngine(store.NewMemoryBlobStore())
	return NewFormModel(context.Background(), eng, constants.ModeIntrospective, false), eng
}

func TestFormModel_Defaults(t *testing.T) {
	m, _ := newForm(t)
	in, err := m.Input()
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if in.Metrics != assess.DefaultMetrics() || in.SuccessRate != 50 {
		t.Errorf("defaults = %+v rate %v", in.Metrics, in.SuccessRate)
	}
	if in.Mode != constants.ModeIntrospective {
		t.Errorf("mode = %q", in.Mode)
	}
}

func TestFormModel_TabTogglesModeAndChordTogglesDebug(t *testing.T) {
	m, _ := newForm(t)
	model, _ := send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	fm := model.(FormModel)
	if fm.mode != constants.ModeRapid {
		t.Errorf("mode = %q, want rapid", fm.mode)
	}

	model, _ = send(t, fm, tea.KeyMsg{Type: tea.KeyCtrlD})
	fm = model.(FormModel)
	if !fm.debug {
		t.Fatal("ctrl+d should open the developer panel")
	}
	if !strings.Contains(fm.View(), `"derived"`) {
		t.Error("developer panel should show the payload")
	}
}

func TestFormModel_Analyze(t *testing.T) {
	m, eng := newForm(t)

	model, _ := send(t, m, runes("learn go; run a 10k"), tea.KeyMsg{Type: tea.KeyCtrlS})
	fm := model.(FormModel)
	if fm.err != nil {
		t.Fatalf("analyze error = %v", fm.err)
	}
	res := fm.Result()
	if res == nil {
		t.Fatal("expected a result")
	}
	if len(res.Payload.Goals) != 2 {
		t.Errorf("goals = %q, want 2", res.Payload.Goals)
	}
	if fm.rendered == "" {
		t.Error("expected a rendered report")
	}

	h, err := eng.History(context.Background(), 0)
	if err != nil || len(h) != 1 {
		t.Errorf("history = %v, %v; want one entry", h, err)
	}
}

func TestFormModel_InvalidMetric(t *testing.T) {
	m, _ := newForm(t)

	// move to Discipline and replace its value
	model, _ := send(t, m,
		tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyBackspace}, runes("x"),
		tea.KeyMsg{Type: tea.KeyCtrlS},
	)
	fm := model.(FormModel)
	if fm.err == nil || !strings.Contains(fm.err.Error(), "Discipline") {
		t.Errorf("err = %v, want a Discipline error", fm.err)
	}
	if fm.Result() != nil {
		t.Error("no result expected for invalid input")
	}
}
