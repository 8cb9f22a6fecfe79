package game

import (
	"math"
	"strings"

	"github.com/nvandessel/mnemosyne/internal/constants"
	"github.com/nvandessel/mnemosyne/internal/rng"
)

// Difficulty returns the current level in [1, 7]. Bias is fractional, so
// the sum is floored before clamping.
func Difficulty(s *RunState) int {
	perfPenalty := min(4, s.ErrorsTotal/2)
	streakPenalty := min(3, s.StreakErrors)
	lucidityBoost := floorDiv(s.Stats.Lucidity-50, 15)
	distortionBoost := floorDiv(s.Stats.Distortion, 35)

	// Summed left to right so float rounding of the bias matches saved runs.
	base := float64(1+s.Round/3) + s.DifficultyBias
	base += float64(lucidityBoost)
	base += float64(distortionBoost)
	base -= float64(perfPenalty)
	base -= float64(streakPenalty)
	level := int(math.Floor(base))
	return max(constants.MinLevel, min(constants.MaxLevel, level))
}

// HintAllowance is how many hints the run may have used in total at the
// current level. It never goes below zero.
func HintAllowance(s *RunState) int {
	return max(0, 3-Difficulty(s)/2-s.ErrorsTotal/5)
}

// ApplyOutcome updates counters and stats after an answer. The draws come
// from src in a fixed order: lucidity, stress, distortion, load.
func ApplyOutcome(s *RunState, src rng.Source, success bool) {
	st := &s.Stats
	if success {
		s.StreakErrors = 0
		s.DifficultyBias += 0.25
		st.Lucidity = clamp(float64(st.Lucidity + rng.IntN(src, 4, 8)))
		st.Stress = clamp(float64(st.Stress - rng.IntN(src, 2, 5)))
		st.Distortion = clamp(float64(st.Distortion - rng.IntN(src, 1, 4)))
		st.CognitiveLoad = clamp(float64(st.CognitiveLoad + rng.IntN(src, 1, 4)))
	} else {
		s.ErrorsTotal++
		s.StreakErrors++
		s.DifficultyBias -= 0.35
		st.Lucidity = clamp(float64(st.Lucidity - rng.IntN(src, 4, 7)))
		st.Stress = clamp(float64(st.Stress + rng.IntN(src, 5, 9)))
		st.Distortion = clamp(float64(st.Distortion + rng.IntN(src, 6, 10) + s.StreakErrors*2))
		st.CognitiveLoad = clamp(float64(st.CognitiveLoad + rng.IntN(src, 4, 8)))
	}

	if s.StreakErrors >= 2 {
		st.Distortion = clamp(float64(st.Distortion + 4))
	}
}

// applyHintCost charges a granted hint against the stats.
func applyHintCost(s *RunState) {
	s.HintUses++
	s.Stats.Lucidity = clamp(float64(s.Stats.Lucidity - 2))
	s.Stats.CognitiveLoad = clamp(float64(s.Stats.CognitiveLoad + 2))
}

// EndingID names one of the five run outcomes.
type EndingID string

const (
	EndingLucidity    EndingID = "lucidity"
	EndingDissolution EndingID = "dissolution"
	EndingPrison      EndingID = "prison"
	EndingInfinite    EndingID = "infinite"
	EndingAmbiguous   EndingID = "ambiguous"
)

// Ending is the final screen of a run.
type Ending struct {
	ID    EndingID `json:"id"`
	Title string   `json:"title"`
	Text  string   `json:"text"`
}

var endings = map[EndingID]Ending{
	EndingLucidity: {
		ID:    EndingLucidity,
		Title: "Lucidity Regained",
		Text:  "The screens go dark. At last you can tell your real memories from the implants.",
	},
	EndingDissolution: {
		ID:    EndingDissolution,
		Title: "Cognitive Dissolution",
		Text:  "Your identity dissolves into parasitic signal. The protocol archives you as noise.",
	},
	EndingPrison: {
		ID:    EndingPrison,
		Title: "Mental Prison",
		Text:  "The lab locks your mind inside a loop of self-defense.",
	},
	EndingInfinite: {
		ID:    EndingInfinite,
		Title: "Infinite Simulation",
		Text:  "Every solution restarts an almost identical version. You never reach the exit.",
	},
	EndingAmbiguous: {
		ID:    EndingAmbiguous,
		Title: "Ambiguous Exit",
		Text:  "The door opens, but the light has the texture of a screen. Were you ever really outside?",
	},
}

// ResolveEnding picks the first matching ending for the final state.
func ResolveEnding(s *RunState) Ending {
	st := s.Stats
	switch {
	case st.Lucidity >= 74 && st.Distortion <= 35 && s.ErrorsTotal <= 3:
		return endings[EndingLucidity]
	case st.Distortion >= 85 && st.CognitiveLoad >= 75:
		return endings[EndingDissolution]
	case st.Stress >= 80 && st.Lucidity <= 30:
		return endings[EndingPrison]
	case s.Round >= constants.MaxRounds && s.ErrorsTotal >= 6:
		return endings[EndingInfinite]
	default:
		return endings[EndingAmbiguous]
	}
}

// Narrative is the ambient line shown under the stats.
func Narrative(st Stats) string {
	switch {
	case st.Distortion > 75:
		return "The walls vibrate. The protocol is manufacturing memories that never existed."
	case st.Lucidity > 72:
		return "You make out stable patterns in the neural noise. An exit seems possible."
	case st.Stress > 70:
		return "Your heart rate is polluting the sensors. The instructions feel more hostile."
	case st.CognitiveLoad > 70:
		return "Your thoughts splinter into incomplete fragments. Simplify or endure."
	default:
		return "The chamber watches your answers and recalculates your psychological profile."
	}
}

// HintText prefixes the puzzle hint with warnings for high distortion and
// high load.
func HintText(s *RunState) string {
	var parts []string
	if s.Stats.Distortion > 65 {
		parts = append(parts, "⚠ High distortion: check every symbol twice.")
	}
	if s.Stats.CognitiveLoad > 70 {
		parts = append(parts, "⚠ High cognitive load: simplify in your head.")
	}
	if s.Current != nil {
		parts = append(parts, s.Current.Hint)
	}
	return strings.Join(parts, " ")
}

// floorDiv is integer division rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
