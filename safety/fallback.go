package safety

import (
	"fmt"
	"math"
)

// A RouteScore summarizes the risk of walking a route. It is produced either
// by the language-model service or by the deterministic fallback below.
type RouteScore struct {
	Score       int    `json:"score"`
	Level       string `json:"level"`
	Lighting    string `json:"lighting"`
	Incidents   string `json:"incidents"`
	Visibility  string `json:"visibility"`
	Explanation string `json:"explanation"`
}

// FallbackScore computes a route score from distance alone, used whenever the
// language-model service is unavailable. It is fully deterministic: the same
// distance and duration always yield the same result.
func FallbackScore(distanceMeters, durationSeconds float64) RouteScore {
	km := distanceMeters / 1000
	score := int(math.Round(70 - km*5))
	if score > 90 {
		score = 90
	}
	if score < 10 {
		score = 10
	}

	var level string
	switch {
	case score > 70:
		level = "low risk"
	case score > 40:
		level = "medium risk"
	default:
		level = "high risk"
	}

	minutes := int(math.Round(durationSeconds / 60))
	return RouteScore{
		Score:      score,
		Level:      level,
		Lighting:   "medium",
		Incidents:  "low",
		Visibility: "medium",
		Explanation: fmt.Sprintf(
			"Estimated from route length only: %.1f km, about %d minutes on foot. Live safety analysis was unavailable.",
			km, minutes,
		),
	}
}
