package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nvandessel/mnemosyne/internal/assess"
	"github.com/nvandessel/mnemosyne/internal/constants"
	"github.com/nvandessel/mnemosyne/internal/devmode"
	"github.com/nvandessel/mnemosyne/internal/game"
	"github.com/nvandessel/mnemosyne/internal/report"
	"github.com/nvandessel/mnemosyne/internal/sanitize"
)

type fieldKind int

const (
	listField fieldKind = iota
	metricField
	rateField
)

type formField struct {
	label  string
	kind   fieldKind
	metric assess.Metric
	input  textinput.Model
}

// FormModel is the assessment form. Tab toggles the mode, ctrl+d the
// developer panel, ctrl+s (or enter on the last field) runs the analysis.
type FormModel struct {
	ctx    context.Context
	engine *assess.Engine
	mode   constants.AssessMode
	fields []formField
	focus  int
	debug  bool
	width  int

	result   *assess.Result
	rendered string
	err      error
}

func newField(label string, kind fieldKind, placeholder string) formField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Width = 48
	ti.CharLimit = 512
	return formField{label: label, kind: kind, input: ti}
}

// NewFormModel builds the form with default metric values.
func NewFormModel(ctx context.Context, engine *assess.Engine, mode constants.AssessMode, debug bool) FormModel {
	if !mode.Valid() {
		mode = constants.ModeIntrospective
	}

	fields := []formField{
		newField("Goals", listField, "one; per; semicolon"),
		newField("Habits", listField, "daily run; reading"),
		newField("Constraints", listField, "night shifts"),
		newField("Priorities", listField, "health; family"),
	}
	defaults := assess.DefaultMetrics()
	for _, m := range assess.AllMetrics {
		f := newField(m.Label(), metricField, "1-10")
		f.metric = m
		f.input.SetValue(strconv.FormatFloat(defaults.Get(m), 'f', -1, 64))
		f.input.CharLimit = 4
		fields = append(fields, f)
	}
	rate := newField("Success rate %", rateField, "0-100")
	rate.input.SetValue("50")
	rate.input.CharLimit = 5
	fields = append(fields, rate)

	fields[0].input.Focus()
	return FormModel{ctx: ctx, engine: engine, mode: mode, fields: fields, debug: debug}
}

// Init starts the cursor blinking.
func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Input collects the current field values.
func (m FormModel) Input() (assess.Input, error) {
	in := assess.Input{Mode: m.mode}
	for _, f := range m.fields {
		v := strings.TrimSpace(f.input.Value())
		switch f.kind {
		case listField:
			list := sanitize.SplitList(v)
			switch f.label {
			case "Goals":
				in.Goals = list
			case "Habits":
				in.Habits = list
			case "Constraints":
				in.Constraints = list
			case "Priorities":
				in.Priorities = list
			}
		case metricField:
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return assess.Input{}, fmt.Errorf("%s must be a number", f.label)
			}
			in.Metrics.Set(f.metric, n)
		case rateField:
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return assess.Input{}, fmt.Errorf("success rate must be a number")
			}
			in.SuccessRate = n
		}
	}
	return in, nil
}

// Result returns the last analysis, or nil.
func (m FormModel) Result() *assess.Result {
	return m.result
}

// Update handles key presses.
func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m FormModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if devmode.AssessChord.Matches(key) {
		m.debug = !m.debug
		return m, nil
	}

	switch key {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		m.mode = m.mode.Toggle()
		return m, nil
	case "up", "shift+tab":
		return m.moveFocus(-1), nil
	case "down":
		return m.moveFocus(1), nil
	case "ctrl+s":
		return m.analyze(), nil
	case "enter":
		if m.focus == len(m.fields)-1 {
			return m.analyze(), nil
		}
		return m.moveFocus(1), nil
	}

	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	return m, cmd
}

func (m FormModel) moveFocus(delta int) FormModel {
	fields := append([]formField(nil), m.fields...)
	fields[m.focus].input.Blur()
	m.focus = (m.focus + delta + len(fields)) % len(fields)
	fields[m.focus].input.Focus()
	m.fields = fields
	return m
}

func (m FormModel) analyze() FormModel {
	in, err := m.Input()
	if err != nil {
		m.err = err
		return m
	}
	res, err := m.engine.Run(m.ctx, in, true)
	if err != nil {
		m.err = err
		return m
	}
	m.err = nil
	m.result = &res

	md := report.Markdown(report.Data{Result: res, Generated: res.Timestamp})
	out, err := report.RenderTerminal(md, m.width)
	if err != nil {
		out = md
	}
	m.rendered = out
	return m
}

// View renders the form and, once analyzed, the result below it.
func (m FormModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Life Architect"))
	b.WriteString(labelStyle.Render("  mode: " + m.mode.String()))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		label := fmt.Sprintf("%-16s", f.label)
		if i == m.focus {
			label = focusStyle.Render(label)
		} else {
			label = labelStyle.Render(label)
		}
		b.WriteString(label + " " + f.input.View() + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + toneStyles[game.ToneBad].Render(m.err.Error()) + "\n")
	}
	if m.debug {
		in, err := m.Input()
		if err == nil {
			if p, err := assess.Extract(in); err == nil {
				data, _ := json.MarshalIndent(p, "", "  ")
				b.WriteString("\n" + debugStyle.Render(string(data)) + "\n")
			}
		}
	}
	if m.rendered != "" {
		b.WriteString("\n" + m.rendered)
	}

	b.WriteString("\n" + helpStyle.Render("↑/↓ move • tab mode • ctrl+s analyze • ctrl+d dev panel • esc quit"))
	return b.String()
}
