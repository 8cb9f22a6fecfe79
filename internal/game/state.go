// Package game holds a puzzle run: its persisted state, the difficulty and
// hint model, outcome application, endings, and the Session controller that
// owns the load/save boundary.
package game

import (
	"math"

	"github.com/nvandessel/mnemosyne/internal/constants"
	"github.com/nvandessel/mnemosyne/internal/puzzle"
)

// Stats are the four player gauges. Every value stays in [0, 100].
type Stats struct {
	Stress        int `json:"stressLevel"`
	Lucidity      int `json:"lucidity"`
	Distortion    int `json:"distortion"`
	CognitiveLoad int `json:"cognitiveLoad"`
}

// InitialStats are the gauges at the start of every run.
func InitialStats() Stats {
	return Stats{Stress: 34, Lucidity: 56, Distortion: 22, CognitiveLoad: 38}
}

// RunState is everything persisted about a run. The generator stream is
// not part of it; a restored run is reseeded from Seed, Round and
// ErrorsTotal.
type RunState struct {
	RunID          string         `json:"runId,omitempty"`
	Seed           int64          `json:"seed"`
	Round          int            `json:"round"`
	ErrorsTotal    int            `json:"errorsTotal"`
	StreakErrors   int            `json:"streakErrors"`
	HintUses       int            `json:"hintUses"`
	DifficultyBias float64        `json:"difficultyBias"`
	MemoryBank     []string       `json:"memoryBank"`
	Stats          Stats          `json:"stats"`
	Current        *puzzle.Puzzle `json:"currentPuzzle"`
	Resolved       bool           `json:"resolved"`
	Finished       bool           `json:"finished"`
}

// NewRunState returns a fresh run for seed with no puzzle yet.
func NewRunState(seed int64) *RunState {
	return &RunState{
		Seed:       seed,
		MemoryBank: []string{},
		Stats:      InitialStats(),
	}
}

// Clone returns a deep copy.
func (s *RunState) Clone() *RunState {
	c := *s
	c.MemoryBank = append([]string(nil), s.MemoryBank...)
	if s.Current != nil {
		p := *s.Current
		p.Choices = append([]string(nil), s.Current.Choices...)
		c.Current = &p
	}
	return &c
}

// remember appends a memory token, evicting the oldest past the cap.
func (s *RunState) remember(token string) {
	s.MemoryBank = append(s.MemoryBank, token)
	if over := len(s.MemoryBank) - constants.MemoryBankCap; over > 0 {
		s.MemoryBank = append([]string(nil), s.MemoryBank[over:]...)
	}
}

// normalize repairs values a hand-edited or older save may carry.
func (s *RunState) normalize() {
	if s.MemoryBank == nil {
		s.MemoryBank = []string{}
	}
	s.Stats.Stress = clamp(float64(s.Stats.Stress))
	s.Stats.Lucidity = clamp(float64(s.Stats.Lucidity))
	s.Stats.Distortion = clamp(float64(s.Stats.Distortion))
	s.Stats.CognitiveLoad = clamp(float64(s.Stats.CognitiveLoad))
	if len(s.MemoryBank) > constants.MemoryBankCap {
		s.MemoryBank = s.MemoryBank[len(s.MemoryBank)-constants.MemoryBankCap:]
	}
}

// clamp rounds half up, then bounds to the stat range.
func clamp(v float64) int {
	r := int(math.Floor(v + 0.5))
	if r < constants.StatMin {
		return constants.StatMin
	}
	if r > constants.StatMax {
		return constants.StatMax
	}
	return r
}
