// Package puzzle builds the four puzzle variants of a run and checks
// answers against them.
//
// Generators draw from an rng.Source in a fixed order; that order is part
// of the reproducibility contract and must not be rearranged.
package puzzle

import (
	"strings"

	"github.com/nvandessel/mnemosyne/internal/rng"
)

// Kind discriminates the puzzle variants.
type Kind string

const (
	KindSequence Kind = "sequence"
	KindSymbol   Kind = "symbol"
	KindMemory   Kind = "memory"
	KindMoral    Kind = "moral"
)

// Display titles per kind.
const (
	TitleSequence = "Sequential Logic"
	TitleSymbol   = "Symbolic Pattern"
	TitleMemory   = "Altered Memory"
	TitleMoral    = "Ambiguous Moral Choice"
)

// Puzzle is one generated challenge. It serializes to the save blob as-is;
// answer checking is derived from Kind, so nothing in it is a function.
type Puzzle struct {
	Kind        Kind     `json:"kind"`
	Title       string   `json:"type"`
	Prompt      string   `json:"prompt"`
	Answer      string   `json:"answer"`
	Hint        string   `json:"hint"`
	Choices     []string `json:"choices,omitempty"`
	MemoryToken string   `json:"memoryToken"`
}

// HasChoices reports whether the puzzle is answered by picking a choice
// index rather than typing free text.
func (p Puzzle) HasChoices() bool {
	return len(p.Choices) > 0
}

// Check reports whether input solves the puzzle. Input is trimmed first.
func (p Puzzle) Check(input string) bool {
	input = strings.TrimSpace(input)
	switch p.kind() {
	case KindMoral:
		return checkChoice(p, input)
	case KindSymbol:
		return checkSymbol(p.Answer, input)
	default:
		return strings.ToLower(input) == strings.ToLower(p.Answer)
	}
}

// kind falls back to the title for saves written before Kind existed.
func (p Puzzle) kind() Kind {
	if p.Kind != "" {
		return p.Kind
	}
	switch p.Title {
	case TitleSequence:
		return KindSequence
	case TitleSymbol:
		return KindSymbol
	case TitleMemory:
		return KindMemory
	}
	if p.HasChoices() {
		return KindMoral
	}
	return ""
}

// Context carries the run values generators depend on.
type Context struct {
	Level      int
	Lucidity   int
	Stress     int
	MemoryBank []string
}

// Generate builds the puzzle for the given round. The variant rotates with
// round % 4: sequence, symbol, memory, moral.
func Generate(src rng.Source, round int, ctx Context) Puzzle {
	switch round % 4 {
	case 0:
		return Sequence(src, ctx.Level)
	case 1:
		return Symbol(src, ctx.Level)
	case 2:
		return Memory(src, ctx.Level, ctx.MemoryBank)
	default:
		return Moral(src, ctx.Level, ctx.Lucidity, ctx.Stress)
	}
}
