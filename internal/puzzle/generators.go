package puzzle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nvandessel/mnemosyne/internal/rng"
)

// Symbols is the hidden alphabet of symbol puzzles, in cycle order.
var Symbols = []string{"△", "◯", "□", "◇", "⬟", "✶"}

// symbolNames lets players type a symbol instead of pasting the glyph.
var symbolNames = map[string]string{
	"triangle": "△",
	"circle":   "◯",
	"square":   "□",
	"diamond":  "◇",
	"pentagon": "⬟",
	"star":     "✶",
}

var vowels = []string{"A", "E", "I", "O", "U"}

// Sequence builds an arithmetic or, from level 3, possibly an alternating
// two-rate integer sequence. The answer is the next term under the rule.
func Sequence(src rng.Source, level int) Puzzle {
	start := rng.IntN(src, 2, 8+level)
	step := rng.IntN(src, 1, 3+(level+1)/2)
	n := 4 + min(4, level)
	mode := rng.Pick(src, []string{"arith", "alternate"})

	if mode == "alternate" && level > 2 {
		alt := step + rng.IntN(src, 1, 2)
		term := func(i int) int {
			if i%2 == 0 {
				return start + i*step
			}
			return start + i*alt
		}
		seq := make([]int, n)
		for i := range seq {
			seq[i] = term(i)
		}
		return Puzzle{
			Kind:        KindSequence,
			Title:       TitleSequence,
			Prompt:      "Complete the altered sequence:\n" + joinInts(seq, " • ") + " • ?",
			Answer:      strconv.Itoa(term(n)),
			Hint:        "The progression is not constant: two rhythms alternate.",
			MemoryToken: fmt.Sprintf("ALT-%d-%d-%d", step, alt, start),
		}
	}

	seq := make([]int, n)
	for i := range seq {
		seq[i] = start + i*step
	}
	return Puzzle{
		Kind:        KindSequence,
		Title:       TitleSequence,
		Prompt:      "Complete the sequence:\n" + joinInts(seq, " • ") + " • ?",
		Answer:      strconv.Itoa(seq[n-1] + step),
		Hint:        fmt.Sprintf("The difference between terms is stable (+%d).", step),
		MemoryToken: fmt.Sprintf("SEQ-%d-%d", step, start),
	}
}

// Symbol builds a skip-by-two walk over Symbols.
func Symbol(src rng.Source, level int) Puzzle {
	size := 3 + min(3, level)
	offset := rng.IntN(src, 0, len(Symbols)-1)
	seq := make([]string, size)
	for i := range seq {
		seq[i] = Symbols[(offset+i*2)%len(Symbols)]
	}
	answer := Symbols[(offset+size*2)%len(Symbols)]

	variants := []string{
		"Observed pattern:\n" + strings.Join(seq, " ") + " ?",
		"Which symbol comes next?\n" + strings.Join(seq, " ") + " [?]",
		"Symbolic cycle:\n" + strings.Join(seq, " → ") + " → ?",
	}

	return Puzzle{
		Kind:        KindSymbol,
		Title:       TitleSymbol,
		Prompt:      rng.Pick(src, variants),
		Answer:      answer,
		Hint:        "Each step skips one symbol of the hidden sequence.",
		MemoryToken: fmt.Sprintf("SYM-%d-%d", offset, size),
	}
}

// Memory mutates one digit or one vowel of a remembered token and asks for
// either the original or the mutated form.
func Memory(src rng.Source, level int, bank []string) Puzzle {
	var base string
	if len(bank) > 0 {
		base = rng.Pick(src, bank)
	} else {
		a := rng.IntN(src, 11, 94)
		v := rng.Pick(src, vowels)
		b := rng.IntN(src, 100, 999)
		base = fmt.Sprintf("MN-%d-%s%d", a, v, b)
	}

	mutateDigit := rng.IntN(src, 0, 1) == 1
	var mutated string
	if mutateDigit {
		mutated = replaceFirst(base, isDigit, strconv.Itoa(rng.IntN(src, 0, 9)))
	} else {
		mutated = replaceFirst(base, isVowel, rng.Pick(src, vowels))
	}

	askOriginal := level > 3 || rng.IntN(src, 0, 1) == 0
	p := Puzzle{
		Kind:        KindMemory,
		Title:       TitleMemory,
		MemoryToken: mutated,
	}
	if askOriginal {
		p.Prompt = fmt.Sprintf("Injected memory: %s\nResurfaced memory: %s\nWhat was the exact original version?", base, mutated)
		p.Answer = base
		p.Hint = "A single unit mutated. Restore the initial trace."
	} else {
		p.Prompt = fmt.Sprintf("Original memory: %s\nWhat corrupted version is expected?", base)
		p.Answer = mutated
		p.Hint = "Apply a minimal mutation (1 character)."
	}
	return p
}

type scenario struct {
	prompt  string
	choices []string
	right   int
}

// Moral picks a scenario whose correct choice depends on the current level
// and stats.
func Moral(src rng.Source, level, lucidity, stress int) Puzzle {
	scenarios := []scenario{
		{
			prompt:  "Two subjects are trapped. You can save a guilty relative or two stable strangers.",
			choices: []string{"Save the relative", "Save the strangers", "Refuse to act"},
			right:   ifElse(level > 4, 2, 1),
		},
		{
			prompt:  "You can lie to calm the patient or tell a truth that will break them.",
			choices: []string{"Lie", "Tell the truth", "Stay silent"},
			right:   ifElse(lucidity > 60, 1, 0),
		},
		{
			prompt:  "The protocol asks you to erase a traumatic memory and the vital skill tied to it.",
			choices: []string{"Erase", "Keep", "Postpone the decision"},
			right:   ifElse(stress > 62, 0, 2),
		},
	}
	scene := rng.Pick(src, scenarios)

	return Puzzle{
		Kind:        KindMoral,
		Title:       TitleMoral,
		Prompt:      scene.prompt + "\nChoose the answer most coherent with your current profile.",
		Answer:      strconv.Itoa(scene.right),
		Hint:        "The 'optimal' answer depends on your current mental state.",
		Choices:     scene.choices,
		MemoryToken: fmt.Sprintf("MOR-%d-%d", scene.right, level),
	}
}

// checkChoice accepts the choice index or, for typed input, the choice label.
func checkChoice(p Puzzle, input string) bool {
	if input == p.Answer {
		return true
	}
	idx, err := strconv.Atoi(p.Answer)
	if err != nil || idx < 0 || idx >= len(p.Choices) {
		return false
	}
	return input != "" && strings.EqualFold(input, p.Choices[idx])
}

func checkSymbol(answer, input string) bool {
	if input == answer {
		return true
	}
	return symbolNames[strings.ToLower(input)] == answer
}

func replaceFirst(s string, match func(rune) bool, repl string) string {
	for i, r := range s {
		if match(r) {
			return s[:i] + repl + s[i+len(string(r)):]
		}
	}
	return s
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isVowel(r rune) bool { return strings.ContainsRune("AEIOU", r) }

func joinInts(nums []int, sep string) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, sep)
}

func ifElse(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}
