package planner

import (
	"math"

	"alcyxob/run-plan/internal/domain"
)

// MaxRampFactor bounds week-over-week growth of the target maximum.
const MaxRampFactor = 1.20

// RampCap is the highest target maximum allowed after a week whose maximum is prevMax.
func RampCap(prevMax float64) float64 {
	return math.Floor(prevMax * MaxRampFactor)
}

// EnforceSafety clamps every week of the plan in chronological order:
//  1. long run to domain.LongRunCeilKm;
//  2. target max to RampCap of the previous week, flagging RampGuard when it had to cut;
//  3. target min to at most target max.
//
// RampGuard is never cleared here. Running it on a compliant plan changes nothing.
func EnforceSafety(p *domain.Plan) *domain.Plan {
	if p == nil {
		return nil
	}
	for i := range p.Weeks {
		w := &p.Weeks[i]
		w.LongRunKm = math.Min(w.LongRunKm, domain.LongRunCeilKm)

		if i > 0 {
			limit := RampCap(p.Weeks[i-1].TargetKmMax)
			if w.TargetKmMax > limit {
				w.TargetKmMax = limit
				w.RampGuard = true
			}
		}
		w.TargetKmMin = math.Min(w.TargetKmMin, w.TargetKmMax)
	}
	return p
}
