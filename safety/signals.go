package safety

import "math"

// ReactionCounts tallies reactions on a story by kind.
type ReactionCounts struct {
	Like    int `json:"like"`
	Helpful int `json:"helpful"`
	Noted   int `json:"noted"`
}

// Total returns the number of reactions across all kinds.
func (c ReactionCounts) Total() int {
	return c.Like + c.Helpful + c.Noted
}

// A StorySignal is the slice of a stored story the aggregator needs: where it
// happened and how the community reacted to it. Stories without coordinates
// carry a nil Coord and are skipped.
type StorySignal struct {
	Coord  *Coordinate
	Counts ReactionCounts
}

// Signals is the aggregated community signal around a start point.
type Signals struct {
	NearbyCount int
	Impact      float64
}

const (
	// nearbyRadiusKm bounds which stories count as near the start point.
	nearbyRadiusKm = 1.2

	weightHelpful = 2.0
	weightLike    = 1.0
	weightNoted   = 0.5

	penaltyFactor = 1.3
	maxPenalty    = 30
)

// AggregateSignals scans location-tagged stories and accumulates a weighted
// community impact from those within the nearby radius of start. Helpful
// reactions weigh 2, likes 1 and noted 0.5.
func AggregateSignals(start Coordinate, stories []StorySignal) Signals {
	var sig Signals
	for _, s := range stories {
		if s.Coord == nil {
			continue
		}
		if Distance(start, *s.Coord) > nearbyRadiusKm {
			continue
		}
		sig.NearbyCount++
		sig.Impact += weightHelpful*float64(s.Counts.Helpful) +
			weightLike*float64(s.Counts.Like) +
			weightNoted*float64(s.Counts.Noted)
	}
	return sig
}

// Penalty converts the raw impact into a score penalty, capped at 30 points.
func (s Signals) Penalty() int {
	p := int(math.Round(s.Impact * penaltyFactor))
	if p > maxPenalty {
		return maxPenalty
	}
	if p < 0 {
		return 0
	}
	return p
}
