// Package tui holds the terminal front ends: the puzzle run and the
// assessment form, built on bubbletea.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nvandessel/mnemosyne/internal/game"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	promptStyle    = lipgloss.NewStyle().Padding(1, 0)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	narrativeStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("111"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	choiceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	focusStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	debugStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1)

	toneStyles = map[game.Tone]lipgloss.Style{
		game.ToneNeutral: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		game.ToneGood:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		game.ToneBad:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}

	barFull  = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	barEmpty = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

const barWidth = 20

// statBar draws a 0-100 gauge.
func statBar(label string, value int) string {
	value = max(0, min(100, value))
	filled := value * barWidth / 100
	return fmt.Sprintf("%-15s %s%s %3d",
		labelStyle.Render(label),
		barFull.Render(strings.Repeat("█", filled)),
		barEmpty.Render(strings.Repeat("░", barWidth-filled)),
		value)
}

func renderFeedback(fb game.Feedback) string {
	if fb.Message == "" {
		return ""
	}
	style, ok := toneStyles[fb.Tone]
	if !ok {
		style = toneStyles[game.ToneNeutral]
	}
	return style.Render(fb.Message)
}
