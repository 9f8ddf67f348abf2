package safety

import "fmt"

// Qualitative signal levels.
const (
	LevelLow    = "Low"
	LevelMedium = "Medium"
	LevelHigh   = "High"
)

// Lighting and visibility have no data source yet. They are fixed defaults,
// kept as named constants so they read as placeholders rather than derived
// values.
const (
	DefaultLightingLevel   = LevelMedium
	DefaultVisibilityLevel = LevelMedium
)

// A ContextSignal is one qualitative row in a safety breakdown.
type ContextSignal struct {
	Label string `json:"label"`
	Level string `json:"level"`
	Note  string `json:"note"`
}

// TimeOfDaySignal grades risk for an hour of day (0-23).
func TimeOfDaySignal(hour int) ContextSignal {
	sig := ContextSignal{Label: "Time of Day"}
	switch {
	case hour >= 22 || hour <= 5:
		sig.Level = LevelHigh
		sig.Note = "Low visibility late at night"
	case hour >= 18:
		sig.Level = LevelMedium
		sig.Note = "Reduced foot traffic in the evening"
	default:
		sig.Level = LevelLow
		sig.Note = "Good daytime visibility"
	}
	return sig
}

// ActivitySignal grades public activity from the count of nearby reports.
func ActivitySignal(nearby int) ContextSignal {
	sig := ContextSignal{Label: "Public Activity"}
	switch {
	case nearby > 3:
		sig.Level = LevelHigh
	case nearby >= 1:
		sig.Level = LevelMedium
	default:
		sig.Level = LevelLow
	}
	switch {
	case nearby == 1:
		sig.Note = "1 community report near this area"
	case nearby > 1:
		sig.Note = fmt.Sprintf("%d community reports near this area", nearby)
	default:
		sig.Note = "No community reports near this area"
	}
	return sig
}

// ContextSignals builds the full qualitative breakdown for the given hour of
// day and nearby report count.
func ContextSignals(hour, nearby int) []ContextSignal {
	return []ContextSignal{
		TimeOfDaySignal(hour),
		{Label: "Lighting", Level: DefaultLightingLevel, Note: "No lighting data for this area yet"},
		{Label: "Visibility", Level: DefaultVisibilityLevel, Note: "No visibility data for this area yet"},
		ActivitySignal(nearby),
	}
}
