package assess

import "math"

// Momentum blends follow-through and discipline into [0, 1].
func Momentum(p Payload) float64 {
	return clampRange(0.6*p.SuccessRate/100+0.4*p.Metrics.Discipline/10, 0, 1)
}

// Fatigue blends constraint load and missing energy into [0, 1].
func Fatigue(p Payload) float64 {
	return clampRange(0.55*p.Derived.ConstraintLoad/10+0.45*(1-p.Metrics.Energy/10), 0, 1)
}

// Scenario is one six-month projection.
type Scenario struct {
	Name        string  `json:"name"`
	Ambition    float64 `json:"ambition"`
	Risk        float64 `json:"risk"`
	Probability float64 `json:"probability"`
}

// Scenario bounds.
const (
	MinProbability = 0.1
	MaxProbability = 0.96
	MinTimeline    = 12
	MaxTimeline    = 100
	TimelineMonths = 6
)

var scenarioShapes = []Scenario{
	{Name: "conservative", Ambition: 0.12, Risk: 0.6},
	{Name: "progressive", Ambition: 0.18, Risk: 1.0},
	{Name: "intensive", Ambition: 0.24, Risk: 1.45},
}

// Scenarios returns the completion probability of each scenario.
func Scenarios(score int, momentum, fatigue float64) []Scenario {
	out := make([]Scenario, len(scenarioShapes))
	base := 0.35 * float64(score) / 100
	for i, s := range scenarioShapes {
		s.Probability = clampRange(base+0.4*momentum+s.Ambition-0.35*fatigue*s.Risk, MinProbability, MaxProbability)
		out[i] = s
	}
	return out
}

// Timeline projects the score for months 1 through 6.
func Timeline(score int, momentum, fatigue float64) []int {
	out := make([]int, TimelineMonths)
	for i := range out {
		m := float64(i + 1)
		v := roundHalfUp(float64(score) + m*(7*momentum-5*fatigue) + 1.5*math.Sqrt(m))
		out[i] = max(MinTimeline, min(MaxTimeline, v))
	}
	return out
}

// stagnationWindow is how many recent scores feed Stagnation.
const stagnationWindow = 4

// Stagnation measures how flat recent scores are, from 0 (moving) to 1
// (flat). Fewer than two scores count as moving.
func Stagnation(previous []int) float64 {
	if len(previous) > stagnationWindow {
		previous = previous[len(previous)-stagnationWindow:]
	}
	if len(previous) < 2 {
		return 0
	}
	lo, hi := previous[0], previous[0]
	for _, v := range previous[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return 1 - math.Min(1, float64(hi-lo)/15)
}
