package planner

import (
	"math"
	"strings"

	"alcyxob/run-plan/internal/domain"
)

// Share of the week's midpoint target given to each running slot.
// The long run is taken from the week as is.
const (
	quality1Share = 0.18
	quality2Share = 0.12
	easy1Share    = 0.17
	easy2Share    = 0.15

	// Leftover distance goes to the two easy runs.
	remainderEasy1Share = 0.40
	remainderEasy2Share = 0.60
)

// Notes keyword that turns the second quality session into optional recovery.
const dropQ2Keyword = "remover q2"

// Optional suffix appended to a quality session that adjustment made optional.
const optionalSuffix = " (Opcional)"

// slotPrescription is what one slot of the skeleton turns into for a given week.
type slotPrescription struct {
	name string
	km   float64
	tag  domain.Tag
}

// weekSplit is the week's midpoint target partitioned across the slots.
type weekSplit struct {
	quality1, quality2 float64
	easy1, easy2       float64
	long               float64
}

func splitWeek(w *domain.Week) weekSplit {
	target := MidTarget(w)
	s := weekSplit{
		quality1: math.Round(target * quality1Share),
		quality2: math.Round(target * quality2Share),
		easy1:    math.Round(target * easy1Share),
		easy2:    math.Round(target * easy2Share),
		long:     w.LongRunKm,
	}
	remaining := math.Max(0, target-(s.long+s.quality1+s.quality2+s.easy1+s.easy2))
	s.easy1 += math.Round(remaining * remainderEasy1Share)
	s.easy2 += math.Round(remaining * remainderEasy2Share)
	return s
}

// prescriptions maps every slot type to its session for week w.
// The key set is exactly domain.SlotTypes.
func prescriptions(w *domain.Week) map[domain.SlotType]slotPrescription {
	split := splitWeek(w)

	q1Name := "Quality Session 1"
	if w.Quality1 != nil && w.Quality1.Name != "" {
		q1Name = w.Quality1.Name
	}
	q2Name := "Strength B or Quality 2"
	if w.Quality2 != nil && w.Quality2.Name != "" {
		q2Name = w.Quality2.Name
	}

	table := map[domain.SlotType]slotPrescription{
		domain.SlotStrengthA:       {name: "Strength A (Legs/Core)", km: 0, tag: domain.TagStrength},
		domain.SlotEasyStrides:     {name: "Easy Run + Strides", km: split.easy1, tag: domain.TagEasy},
		domain.SlotQuality1:        {name: q1Name, km: split.quality1, tag: domain.TagQuality},
		domain.SlotOffOrCross:      {name: "Rest or Cross-Training", km: 0, tag: domain.TagRecovery},
		domain.SlotStrengthBOrQ2:   {name: q2Name, km: split.quality2, tag: domain.TagQuality},
		domain.SlotEasyTechnique:   {name: "Easy Run + Technique", km: split.easy2, tag: domain.TagEasy},
		domain.SlotLongProgressive: {name: "Progressive Long Run", km: split.long, tag: domain.TagLong},
	}

	if strings.Contains(strings.ToLower(w.Notes), dropQ2Keyword) {
		table[domain.SlotStrengthBOrQ2] = slotPrescription{
			name: "Strength B / Off (Optional Q2)",
			km:   0,
			tag:  domain.TagRecovery,
		}
	}
	return table
}

// GenerateSessionsForWeek expands week weekIndex into one session per slot of
// the plan's week structure, in that order. The plan is expected to be
// safety-enforced already.
//
// When the week already holds a session list of the same length, the result
// keeps each existing session's Day, Done and Km and only refreshes PlannedKm,
// Name, Tag and Type. The plan itself is never modified; an invalid index
// returns nil.
func GenerateSessionsForWeek(p *domain.Plan, weekIndex int) []domain.Session {
	if !validWeek(p, weekIndex) {
		return nil
	}
	week := &p.Weeks[weekIndex]
	table := prescriptions(week)

	fresh := make([]domain.Session, len(p.Defaults.WeekStructure))
	for i, slot := range p.Defaults.WeekStructure {
		rx, ok := table[slot.Type]
		if !ok {
			// Unknown slots only reach here when Validate was skipped.
			rx = slotPrescription{name: string(slot.Type), tag: domain.TagRecovery}
		}
		fresh[i] = domain.Session{
			Day:       slot.Day,
			Type:      slot.Type,
			PlannedKm: rx.km,
			Name:      rx.name,
			Tag:       rx.tag,
		}
	}

	if len(week.Sessions) != len(fresh) {
		return fresh
	}
	merged := make([]domain.Session, len(fresh))
	for i, old := range week.Sessions {
		old.PlannedKm = fresh[i].PlannedKm
		old.Name = fresh[i].Name
		old.Tag = fresh[i].Tag
		old.Type = fresh[i].Type
		merged[i] = old
	}
	return merged
}

// PlannedKm sums the planned distance of a session list.
func PlannedKm(sessions []domain.Session) float64 {
	total := 0.0
	for _, s := range sessions {
		total += s.PlannedKm
	}
	return total
}
