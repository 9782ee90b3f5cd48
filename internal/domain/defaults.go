package domain

// DefaultWeekStructure returns the standard Monday-to-Sunday skeleton.
func DefaultWeekStructure() []WeekSlot {
	return []WeekSlot{
		{Day: "Mon", Type: SlotStrengthA},
		{Day: "Tue", Type: SlotEasyStrides},
		{Day: "Wed", Type: SlotQuality1},
		{Day: "Thu", Type: SlotOffOrCross},
		{Day: "Fri", Type: SlotStrengthBOrQ2},
		{Day: "Sat", Type: SlotEasyTechnique},
		{Day: "Sun", Type: SlotLongProgressive},
	}
}

type weekTemplate struct {
	phase    string
	min, max float64
	long     float64
	notes    string
}

// Every max stays within the 20% ramp of the week before it.
var defaultWeeks = [PlanWeeks]weekTemplate{
	{"Base", 20, 24, 8, ""},
	{"Base", 22, 26, 9, ""},
	{"Base", 24, 28, 10, ""},
	{"Deload", 22, 26, 8, "Deload week: remover Q2."},
	{"Build", 26, 30, 10.5, ""},
	{"Build", 28, 32, 11, ""},
	{"Build", 30, 34, 12, ""},
	{"Deload", 24, 28, 9, "Deload week: remover Q2."},
	{"Peak", 30, 33, 12.3, ""},
	{"Peak", 32, 36, 12.3, ""},
	{"Taper", 24, 28, 10, ""},
	{"Race", 15, 18, 6, "Race week. Keep the legs fresh."},
}

var phaseWorkouts = map[string][2]QualityWorkout{
	"Base": {
		{Name: "Fartlek 8x1min", Structure: "8x1min hard / 1min easy", TargetIntensity: IntensityTempo},
		{Name: "Hill Repeats", Structure: "6x45s uphill, walk down", TargetIntensity: IntensityReps},
	},
	"Build": {
		{Name: "Tempo 3x8min", Structure: "3x8min @ tempo, r=2min", TargetIntensity: IntensityTempo},
		{Name: "Intervals 6x800m", Structure: "6x800m, r=2min jog", TargetIntensity: Intensity10K},
	},
	"Peak": {
		{Name: "Cruise Intervals 4x1.6km", Structure: "4x1.6km @ 10K/15K pace, r=90s", TargetIntensity: Intensity10K15K},
		{Name: "Reps 10x400m", Structure: "10x400m, r=200m jog", TargetIntensity: IntensityReps},
	},
	"Deload": {
		{Name: "Strides 10x20s", Structure: "10x20s relaxed fast, full recovery", TargetIntensity: IntensityReps},
		{Name: "Easy Fartlek", Structure: "6x1min steady / 2min easy", TargetIntensity: IntensityEasy},
	},
	"Taper": {
		{Name: "Tempo 2x6min", Structure: "2x6min @ tempo, r=3min", TargetIntensity: IntensityTempo},
		{Name: "Race Pace 5x1km", Structure: "5x1km @ 10K pace, r=2min", TargetIntensity: Intensity10K},
	},
	"Race": {
		{Name: "Sharpener 4x400m", Structure: "4x400m @ 10K pace, r=2min", TargetIntensity: Intensity10K},
	},
}

// NewDefaultPlan builds the starter 12-week plan used when the store holds no document.
// startDate may be empty; the planner fills it in on load.
func NewDefaultPlan(id, name, startDate string) *Plan {
	p := &Plan{
		ID:        id,
		Name:      name,
		StartDate: startDate,
		PaceRanges: PaceRanges{
			EasyMin: 360, EasyMax: 400,
			TempoMin: 300, TempoMax: 320,
			RepsMin: 270, RepsMax: 285,
		},
		Defaults: Defaults{
			WarmupMin:     15,
			CooldownMin:   10,
			WeekStructure: DefaultWeekStructure(),
		},
		Weeks: make([]Week, 0, PlanWeeks),
	}
	for i, t := range defaultWeeks {
		w := Week{
			Number:      i + 1,
			Phase:       t.phase,
			TargetKmMin: t.min,
			TargetKmMax: t.max,
			LongRunKm:   t.long,
			Notes:       t.notes,
		}
		if qs, ok := phaseWorkouts[t.phase]; ok {
			q1 := qs[0]
			w.Quality1 = &q1
			if qs[1].Name != "" {
				q2 := qs[1]
				w.Quality2 = &q2
			}
		}
		p.Weeks = append(p.Weeks, w)
	}
	return p
}
