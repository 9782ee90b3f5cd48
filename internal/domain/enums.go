package domain

// SlotType identifies one of the seven fixed slots of the weekly skeleton.
type SlotType string

const (
	SlotStrengthA       SlotType = "strength_A"
	SlotEasyStrides     SlotType = "easy_strides"
	SlotQuality1        SlotType = "quality_1"
	SlotOffOrCross      SlotType = "off_or_cross"
	SlotStrengthBOrQ2   SlotType = "strength_B_or_quality_2"
	SlotEasyTechnique   SlotType = "easy_technique"
	SlotLongProgressive SlotType = "long_progressive"
)

// SlotTypes lists every slot type in skeleton order.
var SlotTypes = []SlotType{
	SlotStrengthA,
	SlotEasyStrides,
	SlotQuality1,
	SlotOffOrCross,
	SlotStrengthBOrQ2,
	SlotEasyTechnique,
	SlotLongProgressive,
}

// Valid reports whether s is one of the seven known slot types.
func (s SlotType) Valid() bool {
	for _, known := range SlotTypes {
		if s == known {
			return true
		}
	}
	return false
}

// Tag classifies a session for display and summaries.
type Tag string

const (
	TagEasy     Tag = "Easy"
	TagQuality  Tag = "Quality"
	TagLong     Tag = "Long"
	TagStrength Tag = "Strength"
	TagRecovery Tag = "Recovery"
)

// Intensity selects which pace-range pair applies to a quality workout.
type Intensity string

const (
	IntensityEasy   Intensity = "easy"
	IntensityTempo  Intensity = "tempo"
	IntensityReps   Intensity = "reps"
	Intensity10K    Intensity = "10K"
	Intensity10K15K Intensity = "10K/15K"
)

// Valid reports whether i is a known intensity. The empty intensity is accepted.
func (i Intensity) Valid() bool {
	switch i {
	case "", IntensityEasy, IntensityTempo, IntensityReps, Intensity10K, Intensity10K15K:
		return true
	}
	return false
}
