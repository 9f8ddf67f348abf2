package safety

// baselineScore is the neutral starting point before community penalties.
const baselineScore = 70

// RiskLevel maps a 0-100 safety score to a discrete label. Boundaries are
// closed at the lower end: exactly 75 is Low, exactly 50 is Medium.
func RiskLevel(score int) string {
	switch {
	case score >= 75:
		return LevelLow
	case score >= 50:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// CommunityScore applies the community penalty to the neutral baseline and
// clamps the result to [0, 100].
func CommunityScore(sig Signals) (score int, level string) {
	score = baselineScore - sig.Penalty()
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, RiskLevel(score)
}
