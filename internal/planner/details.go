package planner

import (
	"fmt"
	"math"

	"alcyxob/run-plan/internal/domain"
)

// SessionDetails is the workout card shown when a session is opened.
type SessionDetails struct {
	Title       string `json:"title"`
	Structure   string `json:"structure,omitempty"`
	Description string `json:"description"`
	PaceHint    string `json:"pace_hint,omitempty"`
	Extras      string `json:"extras,omitempty"`
	WarmupMin   int    `json:"warmup_min,omitempty"`
	CooldownMin int    `json:"cooldown_min,omitempty"`
}

// FormatPace renders seconds per kilometre as m:ss/km.
func FormatPace(seconds int) string {
	return fmt.Sprintf("%d:%02d/km", seconds/60, int(math.Round(float64(seconds%60))))
}

// PaceHint returns the pace range matching an intensity. Unknown or empty
// intensities fall back to easy pace.
func PaceHint(pr domain.PaceRanges, intensity domain.Intensity) string {
	switch intensity {
	case domain.IntensityTempo:
		return FormatPace(pr.TempoMin) + " – " + FormatPace(pr.TempoMax)
	case domain.IntensityReps, domain.Intensity10K, domain.Intensity10K15K:
		return FormatPace(pr.RepsMin) + " – " + FormatPace(pr.RepsMax)
	default:
		return FormatPace(pr.EasyMin) + " – " + FormatPace(pr.EasyMax)
	}
}

// DescribeSession builds the workout card for a session of week w.
func DescribeSession(p *domain.Plan, w *domain.Week, s domain.Session) SessionDetails {
	easyPace := PaceHint(p.PaceRanges, domain.IntensityEasy)

	switch s.Tag {
	case domain.TagQuality:
		q := w.Quality1
		if s.Type == domain.SlotStrengthBOrQ2 {
			q = w.Quality2
		}
		d := SessionDetails{
			Title:       s.Name,
			Structure:   "Structure not defined.",
			Description: "Quality session. Warm up and cool down easy.",
			PaceHint:    PaceHint(p.PaceRanges, domain.IntensityTempo),
			WarmupMin:   p.Defaults.WarmupMin,
			CooldownMin: p.Defaults.CooldownMin,
		}
		if q != nil {
			d.Title = q.Name
			if q.Structure != "" {
				d.Structure = q.Structure
			}
			if q.TargetIntensity != "" {
				d.PaceHint = PaceHint(p.PaceRanges, q.TargetIntensity)
			}
		}
		return d

	case domain.TagLong:
		return SessionDetails{
			Title:       s.Name,
			Description: "Start comfortable and build the pace gradually through the second half.",
			PaceHint:    easyPace,
		}

	case domain.TagEasy:
		d := SessionDetails{
			Title:       s.Name,
			Description: "Light, steady running for recovery and volume.",
			PaceHint:    easyPace,
		}
		switch s.Type {
		case domain.SlotEasyStrides:
			d.Extras = "+ 6-8 strides of 15s"
		case domain.SlotEasyTechnique:
			d.Extras = "+ 8-10 min of technique drills"
		}
		return d

	case domain.TagStrength:
		return SessionDetails{
			Title:       s.Name,
			Description: "General strength work for legs and core. Stay fresh for the running sessions.",
		}

	default:
		return SessionDetails{
			Title:       s.Name,
			Description: "Rest is where the training adapts.",
		}
	}
}
