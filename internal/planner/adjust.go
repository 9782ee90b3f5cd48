package planner

import (
	"math"

	"alcyxob/run-plan/internal/domain"
)

// Adjustment thresholds and factors. They are fixed for every plan.
const (
	lowAdherencePct  = 60.0
	highAdherencePct = 90.0
	painLimit        = 7
	fatigueLimit     = 7
	rhrLimit         = 8

	reductionFactor = 0.90
	increaseFactor  = 1.05
	minOfMaxFactor  = 0.90
)

// AutoAdjustNote is appended to the next week's notes when volume is cut.
const AutoAdjustNote = "Auto-adjustment: volume reduced due to risk signals."

// Decision is the outcome of assessing a finished week.
type Decision string

const (
	DecisionNone     Decision = "none"
	DecisionReduce   Decision = "reduce"
	DecisionIncrease Decision = "increase"
)

// HighRisk reports whether the week's adherence or the questionnaire calls for a cut.
func HighRisk(adherence float64, r domain.WeekRegister) bool {
	return adherence < lowAdherencePct ||
		r.Pain >= painLimit ||
		r.Fatigue >= fatigueLimit ||
		r.RHR >= rhrLimit ||
		r.Ill
}

// Assess decides what the week after weekIndex should get, without changing anything.
func Assess(p *domain.Plan, weekIndex int, r domain.WeekRegister) Decision {
	if !validWeek(p, weekIndex) || !validWeek(p, weekIndex+1) {
		return DecisionNone
	}
	adherence := Adherence(&p.Weeks[weekIndex])
	switch {
	case HighRisk(adherence, r):
		return DecisionReduce
	case adherence >= highAdherencePct:
		return DecisionIncrease
	default:
		return DecisionNone
	}
}

// AdjustNextWeek rewrites the targets of the week after weekIndex from the
// register and returns what it did. After any change the whole plan is
// re-clamped and the next week's sessions are regenerated, keeping logged progress.
// Targets and long run always use floor so that rounding leans conservative.
func AdjustNextWeek(p *domain.Plan, weekIndex int, r domain.WeekRegister) Decision {
	if !validWeek(p, weekIndex) || !validWeek(p, weekIndex+1) {
		return DecisionNone
	}
	current := &p.Weeks[weekIndex]
	next := &p.Weeks[weekIndex+1]
	RefreshRealized(current)

	decision := Assess(p, weekIndex, r)
	switch decision {
	case DecisionReduce:
		next.TargetKmMax = math.Floor(current.TargetKmMax * reductionFactor)
		next.TargetKmMin = math.Floor(next.TargetKmMax * minOfMaxFactor)
		next.LongRunKm = math.Min(domain.LongRunCeilKm, math.Floor(current.LongRunKm*reductionFactor))
		if next.Notes != "" {
			next.Notes += " "
		}
		next.Notes += AutoAdjustNote
		if next.Quality2 != nil {
			next.Quality2.Name += optionalSuffix
		}
		next.AutoAdjusted = true

	case DecisionIncrease:
		proposedMax := math.Min(math.Floor(current.TargetKmMax*increaseFactor), RampCap(current.TargetKmMax))
		next.TargetKmMax = proposedMax
		next.TargetKmMin = math.Floor(proposedMax * minOfMaxFactor)
		next.LongRunKm = math.Min(domain.LongRunCeilKm, math.Floor(current.LongRunKm*increaseFactor))
		next.AutoAdjusted = true

	default:
		return DecisionNone
	}

	before := targetsFrom(p, weekIndex+2)
	EnforceSafety(p)
	next.Sessions = GenerateSessionsForWeek(p, weekIndex+1)

	// A cut can push a later week over its ramp cap; keep its sessions in line
	// with the clamped targets.
	for i, t := range before {
		idx := weekIndex + 2 + i
		if t != targetsOf(&p.Weeks[idx]) {
			p.Weeks[idx].Sessions = GenerateSessionsForWeek(p, idx)
		}
	}
	return decision
}

type weekTargets struct {
	min, max, long float64
}

func targetsOf(w *domain.Week) weekTargets {
	return weekTargets{min: w.TargetKmMin, max: w.TargetKmMax, long: w.LongRunKm}
}

func targetsFrom(p *domain.Plan, from int) []weekTargets {
	var out []weekTargets
	for i := from; i < len(p.Weeks); i++ {
		out = append(out, targetsOf(&p.Weeks[i]))
	}
	return out
}

// AutoAdjustPlan applies AdjustNextWeek and reports whether the next week changed.
// It returns false without touching the plan when there is no next week.
func AutoAdjustPlan(p *domain.Plan, weekIndex int, r domain.WeekRegister) bool {
	return AdjustNextWeek(p, weekIndex, r) != DecisionNone
}
