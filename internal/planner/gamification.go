package planner

import (
	"math"

	"alcyxob/run-plan/internal/domain"
)

const (
	xpPerKm    = 10
	xpPerLevel = 100

	streakAdherencePct  = 90.0
	perfectAdherencePct = 100.0
	consistencyWeeks    = 3
	first50KThresholdKm = 50.0
)

// Badge is an achievement, awarded at most once per plan.
type Badge string

const (
	BadgePerfectWeek Badge = "Perfect Week"
	BadgeConsistency Badge = "Consistency"
	BadgeFirst50K    Badge = "First 50K"
)

// XPFromKm converts distance to experience points: 10 XP per km.
func XPFromKm(km float64) int {
	return int(math.Floor(km * xpPerKm))
}

// LevelFromXP starts at level 1 and gains a level every 100 XP.
func LevelFromXP(xp int) int {
	return xp/xpPerLevel + 1
}

// XPForNextLevel is how many XP are missing to reach the next level.
func XPForNextLevel(xp int) int {
	return xpPerLevel - xp%xpPerLevel
}

// Achievements is derived from the plan on every query and never stored.
type Achievements struct {
	CurrentStreak int     `json:"current_streak"`
	Badges        []Badge `json:"badges"`
}

// CalculateAchievements computes the current streak and badges from the
// whole plan history. It does not modify the plan.
func CalculateAchievements(p *domain.Plan) Achievements {
	out := Achievements{Badges: []Badge{}}
	if p == nil {
		return out
	}

	// Streak: walk weeks with progress from the most recent backwards.
	var progressed []*domain.Week
	for i := range p.Weeks {
		if hasProgress(&p.Weeks[i]) {
			progressed = append(progressed, &p.Weeks[i])
		}
	}
	for i := len(progressed) - 1; i >= 0; i-- {
		if Adherence(progressed[i]) < streakAdherencePct {
			break
		}
		out.CurrentStreak++
	}

	totalKm := 0.0
	consistent := 0
	perfect := false
	for i := range p.Weeks {
		w := &p.Weeks[i]
		totalKm += RealizedKm(w)
		adherence := Adherence(w)
		if adherence >= perfectAdherencePct {
			perfect = true
		}
		if adherence >= streakAdherencePct {
			consistent++
		}
	}

	if perfect {
		out.Badges = append(out.Badges, BadgePerfectWeek)
	}
	if consistent >= consistencyWeeks {
		out.Badges = append(out.Badges, BadgeConsistency)
	}
	if totalKm >= first50KThresholdKm {
		out.Badges = append(out.Badges, BadgeFirst50K)
	}
	return out
}

func hasProgress(w *domain.Week) bool {
	if RealizedKm(w) > 0 {
		return true
	}
	for _, s := range w.Sessions {
		if s.Done {
			return true
		}
	}
	return false
}

// TotalRealizedKm sums realized distance across the plan.
func TotalRealizedKm(p *domain.Plan) float64 {
	total := 0.0
	for i := range p.Weeks {
		total += RealizedKm(&p.Weeks[i])
	}
	return roundTenth(total)
}

// WeekSummary is the KPI card for one week.
type WeekSummary struct {
	Number          int     `json:"number"`
	Phase           string  `json:"phase"`
	MidTargetKm     float64 `json:"mid_target_km"`
	RealizedKm      float64 `json:"realized_km"`
	PlannedKm       float64 `json:"planned_km"`
	LongRunKm       float64 `json:"long_run_km"`
	ProgressPercent int     `json:"progress_percent"`
	TotalKm         float64 `json:"total_km"`
	XP              int     `json:"xp"`
	Level           int     `json:"level"`
	XPInLevel       int     `json:"xp_in_level"`
	XPToNextLevel   int     `json:"xp_to_next_level"`
	Adjusted        bool    `json:"adjusted"` // RampGuard or AutoAdjusted touched this week
}

// Summarize builds the KPI card for week weekIndex. XP and level come from
// the cumulative distance of the whole plan.
func Summarize(p *domain.Plan, weekIndex int) (WeekSummary, bool) {
	if !validWeek(p, weekIndex) {
		return WeekSummary{}, false
	}
	w := &p.Weeks[weekIndex]
	mid := MidTarget(w)
	realized := RealizedKm(w)

	progress := 0
	if mid > 0 {
		progress = int(math.Min(100, math.Round(realized/mid*100)))
	}

	total := TotalRealizedKm(p)
	xp := XPFromKm(total)
	return WeekSummary{
		Number:          w.Number,
		Phase:           w.Phase,
		MidTargetKm:     mid,
		RealizedKm:      realized,
		PlannedKm:       PlannedKm(w.Sessions),
		LongRunKm:       w.LongRunKm,
		ProgressPercent: progress,
		TotalKm:         total,
		XP:              xp,
		Level:           LevelFromXP(xp),
		XPInLevel:       xp % xpPerLevel,
		XPToNextLevel:   XPForNextLevel(xp),
		Adjusted:        w.RampGuard || w.AutoAdjusted,
	}, true
}

// ProgressPoint is one week of the target-versus-realized chart.
type ProgressPoint struct {
	Week        int     `json:"week"`
	TargetKmMin float64 `json:"target_km_min"`
	TargetKmMax float64 `json:"target_km_max"`
	MidTargetKm float64 `json:"mid_target_km"`
	RealizedKm  float64 `json:"realized_km"`
}

// Progression returns the chart series for every week of the plan.
func Progression(p *domain.Plan) []ProgressPoint {
	points := make([]ProgressPoint, 0, len(p.Weeks))
	for i := range p.Weeks {
		w := &p.Weeks[i]
		points = append(points, ProgressPoint{
			Week:        w.Number,
			TargetKmMin: w.TargetKmMin,
			TargetKmMax: w.TargetKmMax,
			MidTargetKm: MidTarget(w),
			RealizedKm:  RealizedKm(w),
		})
	}
	return points
}
