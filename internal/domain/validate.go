package domain

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used by plan documents.
const DateLayout = "2006-01-02"

// Validation errors. Validate wraps them with the offending week or slot.
var (
	ErrWrongWeekCount    = errors.New("plan must have exactly 12 weeks")
	ErrWeekOutOfOrder    = errors.New("week number does not match its position")
	ErrWrongSlotCount    = errors.New("week structure must have exactly 7 slots")
	ErrUnknownSlotType   = errors.New("unknown week structure slot type")
	ErrInvalidPaceRange  = errors.New("pace ranges must be positive with min <= max")
	ErrInvalidTarget     = errors.New("weekly targets must be non-negative with min <= max")
	ErrInvalidLongRun    = errors.New("long run distance cannot be negative")
	ErrInvalidSessions   = errors.New("week sessions must be empty or match the week structure")
	ErrInvalidIntensity  = errors.New("unknown quality workout intensity")
	ErrInvalidDateFormat = errors.New("invalid date format (use YYYY-MM-DD)")
	ErrInvalidRegister   = errors.New("week register value out of range")
)

// ParseDate parses a YYYY-MM-DD plan date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return t, nil
}

// Validate checks the structural invariants a loaded document must satisfy
// before any planner function touches it.
// An empty StartDate is allowed; the planner fills it in on load.
func (p *Plan) Validate() error {
	if p.StartDate != "" {
		if _, err := ParseDate(p.StartDate); err != nil {
			return fmt.Errorf("start_date: %w", err)
		}
	}
	if p.RaceDate != "" {
		if _, err := ParseDate(p.RaceDate); err != nil {
			return fmt.Errorf("race_date: %w", err)
		}
	}

	pr := p.PaceRanges
	for _, pair := range [][2]int{{pr.EasyMin, pr.EasyMax}, {pr.TempoMin, pr.TempoMax}, {pr.RepsMin, pr.RepsMax}} {
		if pair[0] <= 0 || pair[1] <= 0 || pair[0] > pair[1] {
			return ErrInvalidPaceRange
		}
	}

	if len(p.Defaults.WeekStructure) != WeekSlots {
		return ErrWrongSlotCount
	}
	for i, slot := range p.Defaults.WeekStructure {
		if !slot.Type.Valid() {
			return fmt.Errorf("slot %d (%q): %w", i, slot.Type, ErrUnknownSlotType)
		}
	}

	if len(p.Weeks) != PlanWeeks {
		return ErrWrongWeekCount
	}
	for i, w := range p.Weeks {
		if w.Number != i+1 {
			return fmt.Errorf("week %d: %w", w.Number, ErrWeekOutOfOrder)
		}
		if w.TargetKmMin < 0 || w.TargetKmMax < 0 || w.TargetKmMin > w.TargetKmMax {
			return fmt.Errorf("week %d: %w", w.Number, ErrInvalidTarget)
		}
		if w.LongRunKm < 0 {
			return fmt.Errorf("week %d: %w", w.Number, ErrInvalidLongRun)
		}
		if len(w.Sessions) != 0 && len(w.Sessions) != WeekSlots {
			return fmt.Errorf("week %d: %w", w.Number, ErrInvalidSessions)
		}
		for _, q := range []*QualityWorkout{w.Quality1, w.Quality2} {
			if q != nil && !q.TargetIntensity.Valid() {
				return fmt.Errorf("week %d: %w", w.Number, ErrInvalidIntensity)
			}
		}
	}
	return nil
}

// Validate checks the questionnaire scales. RHR is a delta against baseline
// and may be negative.
func (r WeekRegister) Validate() error {
	scales := []struct {
		name     string
		val, max int
	}{
		{"adherence", r.Adherence, 150},
		{"pain", r.Pain, 10},
		{"fatigue", r.Fatigue, 10},
		{"stiff", r.Stiff, 10},
	}
	for _, sc := range scales {
		if sc.val < 0 || sc.val > sc.max {
			return fmt.Errorf("%s must be within 0..%d: %w", sc.name, sc.max, ErrInvalidRegister)
		}
	}
	if r.Sleep < 0 || r.Sleep > 24 {
		return fmt.Errorf("sleep must be within 0..24 hours: %w", ErrInvalidRegister)
	}
	return nil
}
