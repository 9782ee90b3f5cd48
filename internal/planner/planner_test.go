package planner_test

import (
	"testing"

	"alcyxob/run-plan/internal/domain"
	"alcyxob/run-plan/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlan(t *testing.T) *domain.Plan {
	t.Helper()
	p := domain.NewDefaultPlan("test", "Test Plan", "2026-01-05")
	require.NoError(t, p.Validate())
	return p
}

// logKm generates sessions for the week when missing and logs km on the long run.
func logKm(p *domain.Plan, weekIndex int, km float64) {
	w := &p.Weeks[weekIndex]
	if len(w.Sessions) == 0 {
		w.Sessions = planner.GenerateSessionsForWeek(p, weekIndex)
	}
	w.Sessions[6].Km = km
	w.Sessions[6].Done = km > 0
	planner.RefreshRealized(w)
}

func TestMidTarget(t *testing.T) {
	assert.Equal(t, 22.0, planner.MidTarget(&domain.Week{TargetKmMin: 20, TargetKmMax: 24}))
	assert.Equal(t, 23.0, planner.MidTarget(&domain.Week{TargetKmMin: 20, TargetKmMax: 25}))
	assert.Equal(t, 0.0, planner.MidTarget(&domain.Week{}))
}

func TestRealizedKm(t *testing.T) {
	w := &domain.Week{RealizedKm: 99}
	assert.Equal(t, 0.0, planner.RealizedKm(w))

	w.Sessions = []domain.Session{{Km: 1.24}, {Km: 2.3}, {Km: 0}}
	assert.Equal(t, 3.5, planner.RealizedKm(w))
	assert.Equal(t, 99.0, w.RealizedKm, "RealizedKm must not write the field")

	assert.Equal(t, 3.5, planner.RefreshRealized(w))
	assert.Equal(t, 3.5, w.RealizedKm)

	w.Sessions = []domain.Session{{Km: 0}, {Km: 0}}
	assert.Equal(t, 0.0, planner.RefreshRealized(w))
}

func TestAdherence_ZeroMidpoint(t *testing.T) {
	w := &domain.Week{Sessions: []domain.Session{{Km: 5}}}
	assert.Equal(t, 0.0, planner.Adherence(w))
}

func TestEnforceSafety_ClampsLongRunAndRamp(t *testing.T) {
	p := newTestPlan(t)
	p.Weeks[0].TargetKmMax = 20
	p.Weeks[0].LongRunKm = 15
	p.Weeks[1].TargetKmMin = 28
	p.Weeks[1].TargetKmMax = 30

	planner.EnforceSafety(p)

	assert.Equal(t, 12.3, p.Weeks[0].LongRunKm)
	assert.Equal(t, 24.0, p.Weeks[1].TargetKmMax)
	assert.Equal(t, 24.0, p.Weeks[1].TargetKmMin)
	assert.True(t, p.Weeks[1].RampGuard)
	assert.False(t, p.Weeks[0].RampGuard)
}

func TestEnforceSafety_NeverClearsRampGuard(t *testing.T) {
	p := newTestPlan(t)
	p.Weeks[3].RampGuard = true
	planner.EnforceSafety(p)
	assert.True(t, p.Weeks[3].RampGuard)
}

func TestEnforceSafety_Invariants(t *testing.T) {
	p := newTestPlan(t)
	for i := range p.Weeks {
		p.Weeks[i].TargetKmMax = float64(10 + i*9)
		p.Weeks[i].TargetKmMin = float64(10 + i*9)
		p.Weeks[i].LongRunKm = float64(8 + i)
	}

	planner.EnforceSafety(p)

	for i := range p.Weeks {
		w := p.Weeks[i]
		assert.LessOrEqual(t, w.LongRunKm, domain.LongRunCeilKm)
		assert.LessOrEqual(t, w.TargetKmMin, w.TargetKmMax)
		if i > 0 {
			assert.LessOrEqual(t, w.TargetKmMax, planner.RampCap(p.Weeks[i-1].TargetKmMax), "week %d", w.Number)
		}
	}
}

func TestEnforceSafety_Idempotent(t *testing.T) {
	p := newTestPlan(t)
	p.Weeks[4].TargetKmMax = 60
	p.Weeks[6].LongRunKm = 20

	once := planner.EnforceSafety(p.Clone())
	twice := planner.EnforceSafety(planner.EnforceSafety(p.Clone()))
	assert.Equal(t, once, twice)

	compliant := newTestPlan(t)
	assert.Equal(t, newTestPlan(t), planner.EnforceSafety(compliant))
}

func TestGenerateSessionsForWeek_Partition(t *testing.T) {
	p := newTestPlan(t)

	sessions := planner.GenerateSessionsForWeek(p, 0)
	require.Len(t, sessions, len(p.Defaults.WeekStructure))

	// Midpoint 22 km: Q1 4, Q2 3, easy 4 + 3, long 8, nothing left over.
	want := []struct {
		slot domain.SlotType
		km   float64
		tag  domain.Tag
		name string
	}{
		{domain.SlotStrengthA, 0, domain.TagStrength, "Strength A (Legs/Core)"},
		{domain.SlotEasyStrides, 4, domain.TagEasy, "Easy Run + Strides"},
		{domain.SlotQuality1, 4, domain.TagQuality, "Fartlek 8x1min"},
		{domain.SlotOffOrCross, 0, domain.TagRecovery, "Rest or Cross-Training"},
		{domain.SlotStrengthBOrQ2, 3, domain.TagQuality, "Hill Repeats"},
		{domain.SlotEasyTechnique, 3, domain.TagEasy, "Easy Run + Technique"},
		{domain.SlotLongProgressive, 8, domain.TagLong, "Progressive Long Run"},
	}
	for i, w := range want {
		s := sessions[i]
		assert.Equal(t, p.Defaults.WeekStructure[i].Day, s.Day)
		assert.Equal(t, w.slot, s.Type)
		assert.Equal(t, w.km, s.PlannedKm, "slot %s", w.slot)
		assert.Equal(t, w.tag, s.Tag)
		assert.Equal(t, w.name, s.Name)
		assert.False(t, s.Done)
		assert.Zero(t, s.Km)
	}
	assert.Equal(t, 22.0, planner.PlannedKm(sessions))
	assert.Empty(t, p.Weeks[0].Sessions, "generation must not assign to the plan")
}

func TestGenerateSessionsForWeek_RemainderGoesToEasyRuns(t *testing.T) {
	p := newTestPlan(t)
	p.Weeks[0].TargetKmMin = 40
	p.Weeks[0].TargetKmMax = 40
	p.Weeks[0].LongRunKm = 5

	sessions := planner.GenerateSessionsForWeek(p, 0)

	// 40 km: Q1 7, Q2 5, easy 7 + 6, long 5 leaves 10: 4 to easy-1, 6 to easy-2.
	assert.Equal(t, 11.0, sessions[1].PlannedKm)
	assert.Equal(t, 7.0, sessions[2].PlannedKm)
	assert.Equal(t, 5.0, sessions[4].PlannedKm)
	assert.Equal(t, 12.0, sessions[5].PlannedKm)
	assert.Equal(t, 5.0, sessions[6].PlannedKm)
}

func TestGenerateSessionsForWeek_GenericQualityNames(t *testing.T) {
	p := newTestPlan(t)
	p.Weeks[0].Quality1 = nil
	p.Weeks[0].Quality2 = nil

	sessions := planner.GenerateSessionsForWeek(p, 0)
	assert.Equal(t, "Quality Session 1", sessions[2].Name)
	assert.Equal(t, "Strength B or Quality 2", sessions[4].Name)
}

func TestGenerateSessionsForWeek_RemoverQ2(t *testing.T) {
	p := newTestPlan(t)
	p.Weeks[0].Notes = "Legs heavy, REMOVER Q2 this week"

	sessions := planner.GenerateSessionsForWeek(p, 0)
	q2 := sessions[4]
	assert.Equal(t, domain.SlotStrengthBOrQ2, q2.Type)
	assert.Zero(t, q2.PlannedKm)
	assert.Equal(t, domain.TagRecovery, q2.Tag)
	assert.Contains(t, q2.Name, "Optional")
}

func TestGenerateSessionsForWeek_ReconcilePreservesProgress(t *testing.T) {
	p := newTestPlan(t)
	p.Weeks[0].Sessions = planner.GenerateSessionsForWeek(p, 0)
	p.Weeks[0].Sessions[2].Km = 5
	p.Weeks[0].Sessions[2].Done = true
	p.Weeks[0].Sessions[2].Day = "Thu"

	p.Weeks[0].TargetKmMin = 30
	p.Weeks[0].TargetKmMax = 34

	sessions := planner.GenerateSessionsForWeek(p, 0)
	require.Len(t, sessions, 7)
	assert.Equal(t, 5.0, sessions[2].Km)
	assert.True(t, sessions[2].Done)
	assert.Equal(t, "Thu", sessions[2].Day)
	assert.Equal(t, 6.0, sessions[2].PlannedKm, "planned km follows the new 32 km midpoint")

	// Existing sessions are left untouched until the caller assigns the result.
	assert.Equal(t, 4.0, p.Weeks[0].Sessions[2].PlannedKm)
}

func TestGenerateSessionsForWeek_InvalidIndex(t *testing.T) {
	p := newTestPlan(t)
	assert.Nil(t, planner.GenerateSessionsForWeek(p, -1))
	assert.Nil(t, planner.GenerateSessionsForWeek(p, 12))
	assert.Nil(t, planner.GenerateSessionsForWeek(nil, 0))
}

func TestNormalize(t *testing.T) {
	p := domain.NewDefaultPlan("test", "Test Plan", "")
	p.Weeks[5].TargetKmMax = 80

	modified := planner.Normalize(p, mustDate(t, "2026-03-02"))
	assert.True(t, modified)
	assert.Equal(t, "2026-03-02", p.StartDate)
	assert.True(t, p.Weeks[5].RampGuard)
	for _, w := range p.Weeks {
		assert.Len(t, w.Sessions, 7)
		assert.Zero(t, w.RealizedKm)
	}

	assert.False(t, planner.Normalize(p, mustDate(t, "2026-03-09")), "second pass has nothing to change")
}

func TestLogSession(t *testing.T) {
	p := newTestPlan(t)
	planner.Normalize(p, mustDate(t, "2026-01-05"))

	km := 4.5
	require.True(t, planner.LogSession(p, 0, 1, true, &km))
	assert.Equal(t, 4.5, p.Weeks[0].RealizedKm)

	// Unchecking keeps a custom distance.
	require.True(t, planner.LogSession(p, 0, 1, false, nil))
	assert.Equal(t, 4.5, p.Weeks[0].Sessions[1].Km)

	// Unchecking a session logged exactly as planned resets it.
	planned := p.Weeks[0].Sessions[2].PlannedKm
	require.True(t, planner.LogSession(p, 0, 2, true, &planned))
	require.True(t, planner.LogSession(p, 0, 2, false, nil))
	assert.Zero(t, p.Weeks[0].Sessions[2].Km)
	assert.Equal(t, 4.5, p.Weeks[0].RealizedKm)

	assert.False(t, planner.LogSession(p, 0, 7, true, nil))
	assert.False(t, planner.LogSession(p, 12, 0, true, nil))
}

func TestFillPlannedAndReset(t *testing.T) {
	p := newTestPlan(t)
	assert.False(t, planner.FillPlanned(p, 0), "no sessions yet")

	planner.Normalize(p, mustDate(t, "2026-01-05"))
	require.True(t, planner.FillPlanned(p, 0))

	w := p.Weeks[0]
	assert.Equal(t, 22.0, w.RealizedKm)
	for _, s := range w.Sessions {
		assert.Equal(t, s.PlannedKm > 0, s.Done)
	}

	require.True(t, planner.ResetWeek(p, 0))
	assert.Zero(t, p.Weeks[0].RealizedKm)
	for _, s := range p.Weeks[0].Sessions {
		assert.False(t, s.Done)
		assert.Zero(t, s.Km)
	}
	assert.False(t, planner.ResetWeek(p, -1))
}
