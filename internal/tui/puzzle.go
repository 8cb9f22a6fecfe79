package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nvandessel/mnemosyne/internal/devmode"
	"github.com/nvandessel/mnemosyne/internal/game"
)

// advanceMsg fires once the post-answer pause is over.
type advanceMsg struct{}

// PuzzleModel plays a run in the terminal.
type PuzzleModel struct {
	ctx     context.Context
	session *game.Session
	delay   time.Duration
	konami  *devmode.SequenceDetector
	input   textinput.Model
	view    game.View
	err     error
	waiting bool
	held    string
}

// NewPuzzleModel wraps a bootstrapped session. delay is the pause between
// an answer and the next puzzle.
func NewPuzzleModel(ctx context.Context, s *game.Session, delay time.Duration) PuzzleModel {
	ti := textinput.New()
	ti.Placeholder = "your answer"
	ti.CharLimit = 64
	ti.Width = 32
	ti.Focus()

	return PuzzleModel{
		ctx:     ctx,
		session: s,
		delay:   delay,
		konami:  devmode.NewKonamiDetector(),
		input:   ti,
		view:    s.View(),
	}
}

// Init starts the cursor blinking.
func (m PuzzleModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses and session results.
func (m PuzzleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case advanceMsg:
		v, err := m.session.Advance(m.ctx)
		m.waiting = false
		return m.apply(v, err), nil
	}
	return m, nil
}

func (m PuzzleModel) apply(v game.View, err error) PuzzleModel {
	if err != nil {
		m.err = err
		return m
	}
	m.err = nil
	m.view = v
	return m
}

func (m PuzzleModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.konami.Feed(key) {
		m.session.ToggleDebug()
		m.konami.Reset()
		m.held = ""
		m.view = m.session.View()
		return m, nil
	}

	// Letters that may belong to the sequence are held back until it
	// completes or breaks.
	if msg.Type == tea.KeyRunes && m.konami.Pending() > 0 {
		m.held += string(msg.Runes)
		return m, nil
	}
	if m.held != "" {
		m.input, _ = m.input.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(m.held)})
		m.held = ""
	}

	switch key {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "ctrl+n":
		v, err := m.session.Restart(m.ctx)
		m.input.Reset()
		m.waiting = false
		return m.apply(v, err), nil
	case "ctrl+h", "?":
		if m.waiting || m.view.Finished {
			return m, nil
		}
		res, err := m.session.Hint(m.ctx)
		return m.apply(res.View, err), nil
	}

	if m.waiting || m.view.Finished {
		return m, nil
	}

	if len(m.view.Choices) > 0 {
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 || n > len(m.view.Choices) {
			return m, nil
		}
		return m.submit(strconv.Itoa(n - 1))
	}

	if key == "enter" {
		answer := strings.TrimSpace(m.input.Value())
		if answer == "" {
			return m, nil
		}
		m.input.Reset()
		return m.submit(answer)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m PuzzleModel) submit(answer string) (tea.Model, tea.Cmd) {
	res, err := m.session.Submit(m.ctx, answer)
	if errors.Is(err, game.ErrNoActivePuzzle) {
		m.err = err
		return m, nil
	}
	m = m.apply(res.View, err)
	if err != nil {
		return m, nil
	}
	m.waiting = true
	return m, tea.Tick(m.delay, func(time.Time) tea.Msg { return advanceMsg{} })
}

// View renders the screen.
func (m PuzzleModel) View() string {
	v := m.view
	var b strings.Builder

	b.WriteString(titleStyle.Render(v.Title))
	b.WriteString("\n")
	b.WriteString(promptStyle.Render(v.Prompt))
	b.WriteString("\n")

	for i, c := range v.Choices {
		b.WriteString(choiceStyle.Render(strconv.Itoa(i+1) + ". " + c))
		b.WriteString("\n")
	}
	if v.ShowInput && !m.waiting {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(statBar("Stress", v.Stats.Stress) + "\n")
	b.WriteString(statBar("Lucidity", v.Stats.Lucidity) + "\n")
	b.WriteString(statBar("Distortion", v.Stats.Distortion) + "\n")
	b.WriteString(statBar("Cognitive load", v.Stats.CognitiveLoad) + "\n\n")

	b.WriteString(labelStyle.Render("seed " + strconv.FormatInt(v.Seed, 10) +
		"  round " + v.RoundLabel + "  errors " + strconv.Itoa(v.Errors)))
	b.WriteString("\n")
	if v.Narrative != "" {
		b.WriteString(narrativeStyle.Render(v.Narrative) + "\n")
	}
	if fb := renderFeedback(v.Feedback); fb != "" {
		b.WriteString("\n" + fb + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + toneStyles[game.ToneBad].Render(m.err.Error()) + "\n")
	}
	if v.Debug != nil {
		b.WriteString("\n" + debugStyle.Render(v.Debug.JSON()) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("enter answer • 1-9 choose • ? hint • ctrl+n new run • esc quit"))
	return b.String()
}
