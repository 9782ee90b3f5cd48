// internal/domain/plan.go
package domain

// Safety ceilings shared by the planner and validation.
const (
	PlanWeeks     = 12   // Number of weeks in a plan
	WeekSlots     = 7    // One slot per calendar day
	LongRunCeilKm = 12.3 // Hard cap for the long run, in km
)

// Plan is the root document: a 12-week running plan plus the athlete's logged progress.
// It is stored opaquely by the document store and mutated in memory by the planner.
type Plan struct {
	ID         string     `bson:"_id,omitempty" json:"id,omitempty"`
	Name       string     `bson:"name" json:"name"`
	StartDate  string     `bson:"start_date" json:"start_date"` // YYYY-MM-DD
	RaceDate   string     `bson:"race_date" json:"race_date"`   // YYYY-MM-DD
	PaceRanges PaceRanges `bson:"pace_ranges" json:"pace_ranges"`
	Defaults   Defaults   `bson:"defaults" json:"defaults"`
	Weeks      []Week     `bson:"weeks" json:"weeks"` // Chronological, Number 1..12
}

// PaceRanges holds seconds-per-kilometre bounds for each intensity.
type PaceRanges struct {
	EasyMin  int `bson:"easy_min_s_per_km" json:"easy_min_s_per_km"`
	EasyMax  int `bson:"easy_max_s_per_km" json:"easy_max_s_per_km"`
	TempoMin int `bson:"tempo_min" json:"tempo_min"`
	TempoMax int `bson:"tempo_max" json:"tempo_max"`
	RepsMin  int `bson:"reps_min" json:"reps_min"`
	RepsMax  int `bson:"reps_max" json:"reps_max"`
}

// Defaults are the plan-wide session defaults, including the fixed weekly skeleton.
type Defaults struct {
	WarmupMin     int        `bson:"warmup_min" json:"warmup_min"`
	CooldownMin   int        `bson:"cooldown_min" json:"cooldown_min"`
	WeekStructure []WeekSlot `bson:"week_structure" json:"week_structure"`
}

// WeekSlot places one slot type on one calendar day.
type WeekSlot struct {
	Day  string   `bson:"day" json:"day"`
	Type SlotType `bson:"type" json:"type"`
}

// Week is one planned training week and everything logged against it.
type Week struct {
	Number      int             `bson:"number" json:"number"`
	Phase       string          `bson:"phase" json:"phase"`
	TargetKmMin float64         `bson:"target_km_min" json:"target_km_min"`
	TargetKmMax float64         `bson:"target_km_max" json:"target_km_max"`
	LongRunKm   float64         `bson:"long_run_km" json:"long_run_km"`
	Quality1    *QualityWorkout `bson:"quality1,omitempty" json:"quality1,omitempty"`
	Quality2    *QualityWorkout `bson:"quality2,omitempty" json:"quality2,omitempty"`
	Sessions    []Session       `bson:"sessions,omitempty" json:"sessions,omitempty"` // Empty or one per week slot
	RealizedKm  float64         `bson:"realized_km" json:"realized_km"`               // Derived from Sessions, never authoritative
	Notes       string          `bson:"notes,omitempty" json:"notes,omitempty"`
	Register    *WeekRegister   `bson:"register,omitempty" json:"register,omitempty"`

	// UI hints only; the planner sets them but never reads them.
	RampGuard    bool `bson:"ramp_guard,omitempty" json:"ramp_guard,omitempty"`
	AutoAdjusted bool `bson:"auto_adjusted,omitempty" json:"auto_adjusted,omitempty"`
}

// QualityWorkout describes a prescribed hard session.
type QualityWorkout struct {
	Name            string    `bson:"name" json:"name"`
	Structure       string    `bson:"structure" json:"structure"` // e.g. "6x800m r=2min"
	TargetIntensity Intensity `bson:"target_intensity" json:"target_intensity"`
}

// Session is one day of a week: the planned prescription plus what the athlete logged.
type Session struct {
	Day       string   `bson:"day" json:"day"`
	Type      SlotType `bson:"type" json:"type"`
	PlannedKm float64  `bson:"planned_km" json:"planned_km"`
	Name      string   `bson:"name" json:"name"`
	Tag       Tag      `bson:"tag" json:"tag"`
	Done      bool     `bson:"done" json:"done"`
	Km        float64  `bson:"km" json:"km"` // Logged distance
}

// WeekRegister is the post-week risk questionnaire.
type WeekRegister struct {
	Adherence int     `bson:"adherence" json:"adherence"` // 0-150 %
	Pain      int     `bson:"pain" json:"pain"`           // 0-10
	Fatigue   int     `bson:"fatigue" json:"fatigue"`     // 0-10
	Stiff     int     `bson:"stiff" json:"stiff"`         // 0-10
	RHR       int     `bson:"rhr" json:"rhr"`             // Resting heart rate deviation, bpm
	Sleep     float64 `bson:"sleep" json:"sleep"`         // Average hours per night
	Heat      bool    `bson:"heat" json:"heat"`
	Ill       bool    `bson:"ill" json:"ill"`
	Notes     string  `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Clone returns a deep copy of the plan, safe to hand to another goroutine.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	out := *p
	if p.Defaults.WeekStructure != nil {
		out.Defaults.WeekStructure = append([]WeekSlot(nil), p.Defaults.WeekStructure...)
	}
	if p.Weeks != nil {
		out.Weeks = make([]Week, len(p.Weeks))
		for i := range p.Weeks {
			out.Weeks[i] = p.Weeks[i].Clone()
		}
	}
	return &out
}

// Clone returns a deep copy of the week.
func (w Week) Clone() Week {
	if w.Quality1 != nil {
		q := *w.Quality1
		w.Quality1 = &q
	}
	if w.Quality2 != nil {
		q := *w.Quality2
		w.Quality2 = &q
	}
	if w.Register != nil {
		r := *w.Register
		w.Register = &r
	}
	if w.Sessions != nil {
		w.Sessions = append([]Session(nil), w.Sessions...)
	}
	return w
}
