package mcp

import (
	"github.com/nvandessel/mnemosyne/internal/assess"
	"github.com/nvandessel/mnemosyne/internal/game"
)

// PuzzleNewRunInput defines the input for the puzzle_new_run tool.
type PuzzleNewRunInput struct {
	Seed int64 `json:"seed,omitempty" jsonschema:"Positive integer seed. Omit for a clock-derived seed."`
}

// PuzzleViewOutput is the screen after a puzzle tool call.
type PuzzleViewOutput struct {
	View    game.View `json:"view" jsonschema:"Current screen: prompt, choices, stats, feedback"`
	Message string    `json:"message" jsonschema:"Human-readable result message"`
}

// PuzzleStateInput defines the input for the puzzle_state tool.
type PuzzleStateInput struct {
	Debug bool `json:"debug,omitempty" jsonschema:"Attach the developer panel (difficulty, hint allowance, counters)"`
}

// PuzzleAnswerInput defines the input for the puzzle_answer tool.
type PuzzleAnswerInput struct {
	Answer string `json:"answer" jsonschema:"Answer text, symbol or symbol name, or the 0-based choice index for moral puzzles"`
}

// PuzzleAnswerOutput defines the output for the puzzle_answer tool.
type PuzzleAnswerOutput struct {
	Correct  bool      `json:"correct" jsonschema:"Whether the answer was accepted"`
	Expected string    `json:"expected,omitempty" jsonschema:"The expected answer when wrong"`
	View     game.View `json:"view" jsonschema:"Screen after advancing to the next puzzle or the ending"`
	Message  string    `json:"message" jsonschema:"Feedback shown to the player"`
}

// PuzzleHintInput defines the input for the puzzle_hint tool.
type PuzzleHintInput struct{}

// PuzzleHintOutput defines the output for the puzzle_hint tool.
type PuzzleHintOutput struct {
	Granted   bool   `json:"granted" jsonschema:"False when the hint allowance is spent"`
	Text      string `json:"text" jsonschema:"Hint text or refusal message"`
	Remaining int    `json:"remaining" jsonschema:"Hints left at the current level"`
}

// PuzzleSeedsInput defines the input for the puzzle_seeds tool.
type PuzzleSeedsInput struct{}

// PuzzleSeedsOutput defines the output for the puzzle_seeds tool.
type PuzzleSeedsOutput struct {
	Seeds []int64 `json:"seeds" jsonschema:"Recent seeds, newest first"`
	Count int     `json:"count"`
}

// AssessAnalyzeInput defines the input for the assess_analyze tool.
type AssessAnalyzeInput struct {
	Mode        string          `json:"mode,omitempty" jsonschema:"introspective (default) or rapid"`
	Goals       []string        `json:"goals,omitempty" jsonschema:"Goals, one per entry"`
	Habits      []string        `json:"habits,omitempty"`
	Constraints []string        `json:"constraints,omitempty"`
	Priorities  []string        `json:"priorities,omitempty"`
	Metrics     *assess.Metrics `json:"metrics,omitempty" jsonschema:"Self ratings from 1 to 10; friction lower is better. Defaults to 5 each."`
	SuccessRate float64         `json:"success_rate,omitempty" jsonschema:"Share of past commitments kept, 0 to 100"`
	DryRun      bool            `json:"dry_run,omitempty" jsonschema:"Analyze without recording in history"`
}

// AssessAnalyzeOutput defines the output for the assess_analyze tool.
type AssessAnalyzeOutput struct {
	Result  assess.Result `json:"result"`
	Message string        `json:"message"`
}

// AssessHistoryInput defines the input for the assess_history tool.
type AssessHistoryInput struct {
	Last int `json:"last,omitempty" jsonschema:"Return only the most recent N entries"`
}

// AssessHistoryOutput defines the output for the assess_history tool.
type AssessHistoryOutput struct {
	Entries []assess.HistoryEntry `json:"entries"`
	Count   int                   `json:"count"`
}
