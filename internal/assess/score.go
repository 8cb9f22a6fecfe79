package assess

import (
	"fmt"
	"sort"

	"github.com/nvandessel/mnemosyne/internal/constants"
)

// Weights of each metric in the score. They sum to 1.
var Weights = map[Metric]float64{
	Discipline: 0.25,
	Clarity:    0.20,
	Energy:     0.20,
	Coherence:  0.20,
	Friction:   0.15,
}

// Required returns the level each metric must reach for the load the
// payload describes, clamped to [1, 10]. For Friction it is the most
// friction the plan tolerates.
func Required(d Derived) Metrics {
	return Metrics{
		Discipline: clampRange(4+0.35*d.GoalComplexity+0.2*d.HabitGap, 1, 10),
		Clarity:    clampRange(4+0.3*d.GoalComplexity+0.25*d.PriorityDensity, 1, 10),
		Energy:     clampRange(3.5+0.3*d.GoalComplexity+0.25*d.ConstraintLoad, 1, 10),
		Coherence:  clampRange(4+0.3*d.PriorityDensity+0.2*d.HabitGap, 1, 10),
		Friction:   clampRange(7-0.3*d.ConstraintLoad-0.15*d.GoalComplexity, 1, 10),
	}
}

// MetricScore is one metric's contribution to the score.
type MetricScore struct {
	Metric     Metric  `json:"metric"`
	Current    float64 `json:"current"`
	Required   float64 `json:"required"`
	Normalized float64 `json:"normalized"`
	Weight     float64 `json:"weight"`
	Gap        float64 `json:"gap"`
}

// Score is the weighted 0-100 result with its per-metric breakdown in
// canonical metric order.
type Score struct {
	Value   int           `json:"value"`
	Metrics []MetricScore `json:"metrics"`
}

// Normalize returns current/required, inverted for Friction, clamped to
// [0, NormalizedCap].
func Normalize(m Metric, current, required float64) float64 {
	var n float64
	if m == Friction {
		n = required / current
	} else {
		n = current / required
	}
	return clampRange(n, 0, constants.NormalizedCap)
}

// GapOf is how far current falls short of required. For Friction the
// shortfall is current above the tolerated level.
func GapOf(m Metric, current, required float64) float64 {
	if m == Friction {
		return current - required
	}
	return required - current
}

// ScorePayload computes the score of p.
func ScorePayload(p Payload) Score {
	req := Required(p.Derived)

	var total float64
	metrics := make([]MetricScore, 0, len(AllMetrics))
	for _, m := range AllMetrics {
		cur, r := p.Metrics.Get(m), req.Get(m)
		n := Normalize(m, cur, r)
		total += Weights[m] * n
		metrics = append(metrics, MetricScore{
			Metric:     m,
			Current:    cur,
			Required:   r,
			Normalized: n,
			Weight:     Weights[m],
			Gap:        GapOf(m, cur, r),
		})
	}

	value := roundHalfUp(100 * total)
	return Score{Value: max(0, min(100, value)), Metrics: metrics}
}

// Gap is one metric's shortfall.
type Gap struct {
	Metric Metric  `json:"metric"`
	Delta  float64 `json:"delta"`
}

// Gaps ranks the metric gaps, largest first. Ties keep canonical order.
func Gaps(s Score) []Gap {
	gaps := make([]Gap, 0, len(s.Metrics))
	for _, ms := range s.Metrics {
		gaps = append(gaps, Gap{Metric: ms.Metric, Delta: ms.Gap})
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Delta > gaps[j].Delta
	})
	return gaps
}

// Insights labels every positive gap, in ranked order.
func Insights(gaps []Gap) []string {
	var out []string
	for _, g := range gaps {
		if g.Delta <= 0 {
			continue
		}
		if g.Metric == Friction {
			out = append(out, fmt.Sprintf("Friction is %.1f above what your plan can absorb.", g.Delta))
			continue
		}
		out = append(out, fmt.Sprintf("%s is %.1f below what your goals require.", g.Metric.Label(), g.Delta))
	}
	return out
}

var levers = map[Metric]string{
	Discipline: "Anchor one non-negotiable habit to a fixed daily time slot.",
	Clarity:    "Rewrite each goal as one measurable outcome with a deadline.",
	Energy:     "Protect sleep and schedule deep work in your peak-energy window.",
	Coherence:  "Pause any goal that does not serve your top priority.",
	Friction:   "Remove one recurring obstacle this week before adding anything new.",
}

// ShrinkLever replaces the first lever when follow-through is low.
const ShrinkLever = "Shrink commitments: halve the scope of every active goal until follow-through passes 60%."

// lowSuccessRate is the success rate below which ShrinkLever applies.
const lowSuccessRate = 40

// Levers maps the three largest gaps to recommendations.
func Levers(gaps []Gap, successRate float64) []string {
	n := min(3, len(gaps))
	out := make([]string, 0, n)
	for _, g := range gaps[:n] {
		out = append(out, levers[g.Metric])
	}
	if successRate < lowSuccessRate && len(out) > 0 {
		out[0] = ShrinkLever
	}
	return out
}
