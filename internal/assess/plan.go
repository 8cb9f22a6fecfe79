package assess

import "github.com/nvandessel/mnemosyne/internal/constants"

// Plan branch thresholds.
const (
	fatigueOverride    = 0.65
	resetSuccessRate   = 45
	resetStagnation    = 0.6
	introspectiveItems = 5
	rapidItems         = 3
)

// PlanBranch says which pool a weekly plan came from.
type PlanBranch string

const (
	BranchGaps     PlanBranch = "gaps"
	BranchRecovery PlanBranch = "recovery"
	BranchReset    PlanBranch = "reset"
)

var actionPools = map[Metric][]string{
	Discipline: {
		"Run the same 20-minute habit at the same time on five days.",
		"Track each habit with a visible check mark every evening.",
		"Decide tomorrow's first task before you stop working.",
	},
	Clarity: {
		"Write one sentence per goal stating what done looks like.",
		"Pick the single outcome that would make this week a success.",
		"Review goals on Sunday and strike anything vague.",
	},
	Energy: {
		"Fix a wake-up time and keep it all seven days.",
		"Take a 10-minute walk after lunch on workdays.",
		"Move demanding work to your first two waking hours.",
	},
	Coherence: {
		"Map every goal to one priority and pause the orphans.",
		"Say no to one request that does not serve your priorities.",
		"Group related tasks into one themed block per day.",
	},
	Friction: {
		"List the three obstacles that cost you most last week.",
		"Prepare tools and materials the night before.",
		"Batch admin chores into a single 45-minute slot.",
	},
}

var recoveryPool = []string{
	"Drop one commitment for this week without replacing it.",
	"Schedule two evenings with no planned work.",
	"Sleep before 23:00 on at least five nights.",
	"Keep only the smallest version of each habit.",
	"Spend 15 minutes outdoors every day.",
}

var resetPool = []string{
	"Pick one goal and park the rest in a someday list.",
	"Cut the chosen goal to a task you can finish in 15 minutes.",
	"Do that task at the same time every day for seven days.",
	"Log every completion, however small.",
	"Review on day seven and raise the bar by one step.",
}

var reflectionPrompts = []string{
	"What did you avoid this week, and what did avoiding it protect?",
	"Which commitment would you not make again today?",
	"When did you feel most like the person your goals describe?",
}

// PlanInputs collects what the weekly plan depends on.
type PlanInputs struct {
	Mode        constants.AssessMode
	Gaps        []Gap
	Fatigue     float64
	SuccessRate float64
	Stagnation  float64
}

// WeeklyPlan is the drafted action list.
type WeeklyPlan struct {
	Branch      PlanBranch `json:"branch"`
	Actions     []string   `json:"actions"`
	Reflections []string   `json:"reflections,omitempty"`
}

// BuildPlan drafts the weekly plan. High fatigue switches to recovery; low
// follow-through with flat scores switches to a reset. Otherwise actions
// rotate across the pools of the three largest gaps.
func BuildPlan(in PlanInputs) WeeklyPlan {
	n := rapidItems
	if in.Mode != constants.ModeRapid {
		n = introspectiveItems
	}

	var plan WeeklyPlan
	switch {
	case in.Fatigue > fatigueOverride:
		plan.Branch = BranchRecovery
		plan.Actions = append([]string(nil), recoveryPool[:n]...)
	case in.SuccessRate < resetSuccessRate && in.Stagnation > resetStagnation:
		plan.Branch = BranchReset
		plan.Actions = append([]string(nil), resetPool[:n]...)
	default:
		plan.Branch = BranchGaps
		plan.Actions = rotate(in.Gaps, n)
	}

	if in.Mode != constants.ModeRapid {
		plan.Reflections = append([]string(nil), reflectionPrompts...)
	}
	return plan
}

// rotate takes items round-robin from the pools of the top three gaps.
func rotate(gaps []Gap, n int) []string {
	top := gaps
	if len(top) > 3 {
		top = top[:3]
	}
	if len(top) == 0 {
		top = []Gap{{Metric: Discipline}}
	}

	out := make([]string, 0, n)
	for k := 0; len(out) < n; k++ {
		pool := actionPools[top[k%len(top)].Metric]
		idx := k / len(top)
		if idx >= len(pool) {
			break
		}
		out = append(out, pool[idx])
	}
	return out
}
