// Package assess is the self-assessment engine: it turns a form payload
// into a 0-100 score, ranks the gaps between current and required metric
// levels, projects six months ahead and drafts a weekly plan. Analyses are
// appended to a capped history log in the blob store.
package assess

import (
	"fmt"
	"math"
	"strings"

	"github.com/nvandessel/mnemosyne/internal/constants"
	"github.com/nvandessel/mnemosyne/internal/sanitize"
)

// Metric names one of the five self-rated dimensions.
type Metric string

const (
	Discipline Metric = "discipline"
	Clarity    Metric = "clarity"
	Energy     Metric = "energy"
	Coherence  Metric = "coherence"
	Friction   Metric = "friction"
)

// AllMetrics lists the metrics in their canonical order. Ties in gap
// ranking keep this order.
var AllMetrics = []Metric{Discipline, Clarity, Energy, Coherence, Friction}

// Label returns the capitalized metric name.
func (m Metric) Label() string {
	s := string(m)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Metrics are the 1-10 self ratings. For Friction lower is better.
type Metrics struct {
	Discipline float64 `json:"discipline" yaml:"discipline"`
	Clarity    float64 `json:"clarity" yaml:"clarity"`
	Energy     float64 `json:"energy" yaml:"energy"`
	Coherence  float64 `json:"coherence" yaml:"coherence"`
	Friction   float64 `json:"friction" yaml:"friction"`
}

// Get returns the rating for m.
func (ms Metrics) Get(m Metric) float64 {
	switch m {
	case Discipline:
		return ms.Discipline
	case Clarity:
		return ms.Clarity
	case Energy:
		return ms.Energy
	case Coherence:
		return ms.Coherence
	case Friction:
		return ms.Friction
	}
	return 0
}

// Set assigns the rating for m.
func (ms *Metrics) Set(m Metric, v float64) {
	switch m {
	case Discipline:
		ms.Discipline = v
	case Clarity:
		ms.Clarity = v
	case Energy:
		ms.Energy = v
	case Coherence:
		ms.Coherence = v
	case Friction:
		ms.Friction = v
	}
}

// DefaultMetrics is the form's starting position.
func DefaultMetrics() Metrics {
	return Metrics{Discipline: 5, Clarity: 5, Energy: 5, Coherence: 5, Friction: 5}
}

// Input is the raw form as a user, a YAML file or an MCP client supplies it.
type Input struct {
	Mode        constants.AssessMode `json:"mode,omitempty" yaml:"mode,omitempty"`
	Goals       []string             `json:"goals" yaml:"goals"`
	Habits      []string             `json:"habits" yaml:"habits"`
	Constraints []string             `json:"constraints" yaml:"constraints"`
	Priorities  []string             `json:"priorities" yaml:"priorities"`
	Metrics     Metrics              `json:"metrics" yaml:"metrics"`
	SuccessRate float64              `json:"successRate" yaml:"success_rate"`
}

// Derived are the complexity scalars computed from the lists, each 0-10.
type Derived struct {
	GoalComplexity  float64 `json:"goalComplexity"`
	PriorityDensity float64 `json:"priorityDensity"`
	ConstraintLoad  float64 `json:"constraintLoad"`
	HabitGap        float64 `json:"habitGap"`
}

// Payload is the cleaned, bounded form plus its derived scalars.
type Payload struct {
	Mode        constants.AssessMode `json:"mode"`
	Goals       []string             `json:"goals"`
	Habits      []string             `json:"habits"`
	Constraints []string             `json:"constraints"`
	Priorities  []string             `json:"priorities"`
	Metrics     Metrics              `json:"metrics"`
	SuccessRate float64              `json:"successRate"`
	Derived     Derived              `json:"derived"`
}

// Extract cleans the lists, bounds the numbers and computes the derived
// scalars. Metrics are clamped to [1, 10] and the success rate to [0, 100];
// only non-numeric values are rejected.
func Extract(in Input) (Payload, error) {
	for _, m := range AllMetrics {
		if v := in.Metrics.Get(m); math.IsNaN(v) || math.IsInf(v, 0) {
			return Payload{}, fmt.Errorf("metric %s is not a number", m)
		}
	}
	if math.IsNaN(in.SuccessRate) || math.IsInf(in.SuccessRate, 0) {
		return Payload{}, fmt.Errorf("success rate is not a number")
	}

	mode := in.Mode
	if mode == "" {
		mode = constants.ModeIntrospective
	}
	if !mode.Valid() {
		return Payload{}, fmt.Errorf("invalid mode: %s (valid: introspective, rapid)", mode)
	}

	p := Payload{
		Mode:        mode,
		Goals:       sanitize.Entries(in.Goals),
		Habits:      sanitize.Entries(in.Habits),
		Constraints: sanitize.Entries(in.Constraints),
		Priorities:  sanitize.Entries(in.Priorities),
		SuccessRate: clampRange(in.SuccessRate, 0, 100),
	}
	for _, m := range AllMetrics {
		p.Metrics.Set(m, clampRange(in.Metrics.Get(m), constants.MetricMin, constants.MetricMax))
	}
	p.Derived = Derive(p.Goals, p.Habits, p.Constraints, p.Priorities)
	return p, nil
}

// Derive computes the complexity scalars from cleaned lists.
func Derive(goals, habits, constraints, priorities []string) Derived {
	g := float64(len(goals))

	var gc float64
	if len(goals) > 0 {
		words := 0
		for _, goal := range goals {
			words += len(strings.Fields(goal))
		}
		avgWords := float64(words) / g
		gc = clampRange(1+1.2*g+0.15*avgWords, 0, 10)
	}

	return Derived{
		GoalComplexity:  gc,
		PriorityDensity: clampRange(2.5*float64(len(priorities))/math.Max(1, g), 0, 10),
		ConstraintLoad:  clampRange(1.6*float64(len(constraints)), 0, 10),
		HabitGap:        clampRange(1.25*math.Max(0, 2*g-float64(len(habits))), 0, 10),
	}
}

func clampRange(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// roundHalfUp rounds like the score display: halves go up.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
