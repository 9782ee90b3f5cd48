// Package planner holds the deterministic plan rules: safety clamps, session
// generation, adaptive adjustment, gamification and calendar helpers.
//
// Every function operates on a caller-owned *domain.Plan. Nothing here keeps
// state between calls, and nothing here is safe for concurrent mutation of the
// same plan; callers serialize access.
package planner

import (
	"math"

	"alcyxob/run-plan/internal/domain"
)

// MidTarget is the week's planning baseline: the rounded midpoint of its target range.
func MidTarget(w *domain.Week) float64 {
	return math.Round((w.TargetKmMin + w.TargetKmMax) / 2)
}

// RealizedKm sums the logged session distances, rounded to one decimal.
// It does not touch w.RealizedKm.
func RealizedKm(w *domain.Week) float64 {
	total := 0.0
	for _, s := range w.Sessions {
		total += s.Km
	}
	return roundTenth(total)
}

// RefreshRealized recomputes w.RealizedKm from the sessions and returns it.
func RefreshRealized(w *domain.Week) float64 {
	w.RealizedKm = RealizedKm(w)
	return w.RealizedKm
}

// Adherence is realized distance over the midpoint target, as a percentage.
// A zero midpoint yields 0.
func Adherence(w *domain.Week) float64 {
	mid := MidTarget(w)
	if mid <= 0 {
		return 0
	}
	return RealizedKm(w) / mid * 100
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func validWeek(p *domain.Plan, idx int) bool {
	return p != nil && idx >= 0 && idx < len(p.Weeks)
}
