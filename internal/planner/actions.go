package planner

import (
	"slices"
	"time"

	"alcyxob/run-plan/internal/domain"
)

// Normalize prepares a freshly loaded plan: fills the start date, enforces
// safety, regenerates every week's sessions and refreshes realized distance.
// It reports whether the document changed in a way worth persisting.
func Normalize(p *domain.Plan, now time.Time) bool {
	modified := EnsureStartDate(p, now)
	EnforceSafety(p)
	for i := range p.Weeks {
		sessions := GenerateSessionsForWeek(p, i)
		if !slices.Equal(sessions, p.Weeks[i].Sessions) {
			p.Weeks[i].Sessions = sessions
			modified = true
		}
		RefreshRealized(&p.Weeks[i])
	}
	return modified
}

// LogSession records the athlete's result for one session. km is optional.
// Unchecking a session whose distance still equals the plan resets it to 0.
// It returns false when either index does not exist.
func LogSession(p *domain.Plan, weekIndex, sessionIndex int, done bool, km *float64) bool {
	if !validWeek(p, weekIndex) {
		return false
	}
	w := &p.Weeks[weekIndex]
	if sessionIndex < 0 || sessionIndex >= len(w.Sessions) {
		return false
	}
	s := &w.Sessions[sessionIndex]
	s.Done = done
	if km != nil {
		s.Km = max(0, *km)
	}
	if !done && s.Km == s.PlannedKm {
		s.Km = 0
	}
	RefreshRealized(w)
	return true
}

// FillPlanned marks every session with planned distance as done at exactly that distance.
func FillPlanned(p *domain.Plan, weekIndex int) bool {
	if !validWeek(p, weekIndex) || len(p.Weeks[weekIndex].Sessions) == 0 {
		return false
	}
	w := &p.Weeks[weekIndex]
	for i := range w.Sessions {
		if w.Sessions[i].PlannedKm > 0 {
			w.Sessions[i].Km = w.Sessions[i].PlannedKm
			w.Sessions[i].Done = true
		}
	}
	RefreshRealized(w)
	return true
}

// ResetWeek clears every logged result of the week.
func ResetWeek(p *domain.Plan, weekIndex int) bool {
	if !validWeek(p, weekIndex) || len(p.Weeks[weekIndex].Sessions) == 0 {
		return false
	}
	w := &p.Weeks[weekIndex]
	for i := range w.Sessions {
		w.Sessions[i].Km = 0
		w.Sessions[i].Done = false
	}
	RefreshRealized(w)
	return true
}
