// Package report renders an assessment as a markdown summary for the
// terminal and as a self-contained printable HTML page.
package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/nvandessel/mnemosyne/internal/assess"
	"github.com/nvandessel/mnemosyne/internal/chart"
)

// Data is what a report shows: one analysis and the history behind it.
type Data struct {
	Result    assess.Result
	History   []assess.HistoryEntry
	Generated time.Time
}

// PastScores returns the history scores, excluding the entry that
// produced Result when it was recorded.
func (d Data) PastScores() []int {
	past := make([]int, 0, len(d.History))
	for _, e := range d.History {
		if d.Result.ID != "" && e.ID == d.Result.ID {
			continue
		}
		past = append(past, e.Score)
	}
	return past
}

// Markdown renders d as a markdown document.
func Markdown(d Data) string {
	r := d.Result
	var b strings.Builder

	fmt.Fprintf(&b, "# Life Architect report\n\n")
	fmt.Fprintf(&b, "_Generated %s, %s mode_\n\n", d.Generated.Format("2006-01-02 15:04"), r.Payload.Mode)
	fmt.Fprintf(&b, "## Score: %d / 100\n\n", r.Score.Value)

	b.WriteString("| Metric | Current | Required | Gap |\n|---|---:|---:|---:|\n")
	for _, ms := range r.Score.Metrics {
		fmt.Fprintf(&b, "| %s | %.1f | %.1f | %+.1f |\n", ms.Metric.Label(), ms.Current, ms.Required, ms.Gap)
	}
	b.WriteString("\n")

	writeList(&b, "Insights", r.Insights)
	writeList(&b, "Levers", r.Levers)

	b.WriteString("## Six-month scenarios\n\n")
	for _, s := range r.Scenarios {
		fmt.Fprintf(&b, "- **%s**: %.0f%%\n", s.Name, 100*s.Probability)
	}
	fmt.Fprintf(&b, "\nProjected scores: %s\n\n", joinInts(r.Timeline))
	fmt.Fprintf(&b, "Momentum %.2f, fatigue %.2f, stagnation %.2f\n\n", r.Momentum, r.Fatigue, r.Stagnation)

	fmt.Fprintf(&b, "## Weekly plan (%s)\n\n", r.Plan.Branch)
	for i, a := range r.Plan.Actions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a)
	}
	b.WriteString("\n")
	writeList(&b, "Reflection", r.Plan.Reflections)

	if past := d.PastScores(); len(past) > 0 {
		fmt.Fprintf(&b, "## History\n\nPrevious scores: %s\n", joinInts(past))
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}

// RenderTerminal styles markdown for the terminal. width <= 0 uses 80.
func RenderTerminal(md string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

type htmlChart struct {
	Title string
	Src   template.URL
}

type htmlTemplateData struct {
	Title     string
	Generated string
	Mode      string
	Result    assess.Result
	Charts    []htmlChart
	Past      []int
}

// HTML renders d as a printable page with the charts inlined as PNG
// data URIs.
func HTML(d Data, chartSize int) ([]byte, error) {
	tmplBytes, err := templates.ReadFile("templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read HTML template: %w", err)
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"percent": func(p float64) string { return fmt.Sprintf("%.0f%%", 100*p) },
		"num":     func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"signed":  func(v float64) string { return fmt.Sprintf("%+.1f", v) },
		"label":   func(m assess.Metric) string { return m.Label() },
	}).Parse(string(tmplBytes))
	if err != nil {
		return nil, fmt.Errorf("parse HTML template: %w", err)
	}

	past := d.PastScores()
	renders := []struct {
		title string
		draw  func() ([]byte, error)
	}{
		{"Current vs required", func() ([]byte, error) { return chart.Bars(d.Result.Score, chartSize) }},
		{"Balance", func() ([]byte, error) { return chart.Radar(d.Result.Score, chartSize) }},
		{"Trajectory", func() ([]byte, error) { return chart.Timeline(past, d.Result.Timeline, chartSize) }},
	}

	data := htmlTemplateData{
		Title:     "Life Architect report",
		Generated: d.Generated.Format("2006-01-02 15:04"),
		Mode:      string(d.Result.Payload.Mode),
		Result:    d.Result,
		Past:      past,
	}
	for _, r := range renders {
		png, err := r.draw()
		if err != nil {
			return nil, fmt.Errorf("render chart %q: %w", r.title, err)
		}
		data.Charts = append(data.Charts, htmlChart{
			Title: r.title,
			// Generated PNG bytes, not user input.
			Src: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), // #nosec G203
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute HTML template: %w", err)
	}
	return buf.Bytes(), nil
}
