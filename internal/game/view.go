package game

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/mnemosyne/internal/constants"
)

// Tone colors a feedback message.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneGood    Tone = "good"
	ToneBad     Tone = "bad"
)

// Feedback is the last message shown to the player.
type Feedback struct {
	Message string `json:"message"`
	Tone    Tone   `json:"tone"`
}

// Player-facing messages.
const (
	MsgPuzzleLoaded  = "Puzzle loaded. Think before you answer."
	MsgCorrect       = "Consistent validation. The protocol lets you advance."
	MsgNoMoreHints   = "No more hints available at this level."
	MsgInvalidSeed   = "Invalid seed. Enter a positive integer."
	MsgNoSave        = "No valid save found."
	MsgRestored      = "Save restored."
	MsgAutoResumed   = "Session auto-resumed from the local save."
	MsgSessionOver   = "Session over. Start a new seed or resume a save."
	MsgDevModeOn     = "Developer mode enabled."
	MsgDevModeOff    = "Developer mode disabled."
	MsgNoActive      = "No active puzzle. Start a new run or wait for the next puzzle."
	msgWrongTemplate = "Error detected. Expected answer: %s"
)

// WrongMessage is the feedback for a failed answer.
func WrongMessage(answer string) string {
	return fmt.Sprintf(msgWrongTemplate, answer)
}

// DebugInfo is the developer panel content.
type DebugInfo struct {
	Seed          int64  `json:"seed"`
	Difficulty    int    `json:"difficulty"`
	HintAllowance int    `json:"hintAllowance"`
	ErrorsTotal   int    `json:"errorsTotal"`
	StreakErrors  int    `json:"streakErrors"`
	HintUses      int    `json:"hintUses"`
	Stats         Stats  `json:"stats"`
	CurrentPuzzle string `json:"currentPuzzle,omitempty"`
}

// Debug snapshots the developer panel for s.
func Debug(s *RunState) DebugInfo {
	d := DebugInfo{
		Seed:          s.Seed,
		Difficulty:    Difficulty(s),
		HintAllowance: HintAllowance(s),
		ErrorsTotal:   s.ErrorsTotal,
		StreakErrors:  s.StreakErrors,
		HintUses:      s.HintUses,
		Stats:         s.Stats,
	}
	if s.Current != nil {
		d.CurrentPuzzle = s.Current.Title
	}
	return d
}

// JSON renders the panel as indented JSON.
func (d DebugInfo) JSON() string {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// View is everything a front end needs to draw the current screen.
type View struct {
	Title      string     `json:"title"`
	Prompt     string     `json:"prompt"`
	Choices    []string   `json:"choices,omitempty"`
	ShowInput  bool       `json:"showInput"`
	ShowHint   bool       `json:"showHint"`
	Level      int        `json:"level"`
	Stats      Stats      `json:"stats"`
	Seed       int64      `json:"seed"`
	RoundLabel string     `json:"roundLabel"`
	Errors     int        `json:"errors"`
	Narrative  string     `json:"narrative"`
	Feedback   Feedback   `json:"feedback"`
	Finished   bool       `json:"finished"`
	Ending     *Ending    `json:"ending,omitempty"`
	Debug      *DebugInfo `json:"debug,omitempty"`
}

// BuildView renders s. debug attaches the developer panel.
func BuildView(s *RunState, fb Feedback, debug bool) View {
	v := View{
		Level:      Difficulty(s),
		Stats:      s.Stats,
		Seed:       s.Seed,
		RoundLabel: fmt.Sprintf("%d/%d", s.Round, constants.MaxRounds),
		Errors:     s.ErrorsTotal,
		Narrative:  Narrative(s.Stats),
		Feedback:   fb,
		Finished:   s.Finished,
	}

	switch {
	case s.Finished:
		e := ResolveEnding(s)
		v.Ending = &e
		v.Title = "END: " + e.Title
		v.Prompt = e.Text
	case s.Current != nil:
		v.Title = fmt.Sprintf("%s (Level %d)", s.Current.Title, v.Level)
		v.Prompt = s.Current.Prompt
		v.Choices = append([]string(nil), s.Current.Choices...)
		v.ShowInput = !s.Current.HasChoices() && !s.Resolved
		v.ShowHint = !s.Resolved
	}

	if debug {
		d := Debug(s)
		v.Debug = &d
	}
	return v
}
