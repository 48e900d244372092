package rating

import "math"

// MarginMultiplier scales a rating change by how lopsided the final score
// was, measured in scoring plays. A one-play game or a tie gets 1.
func (p Params) MarginMultiplier(scoreDiff float64) float64 {
	plays := math.Min(math.Abs(scoreDiff)/p.MarginPointsPerScore, p.MarginMaxScores)
	plays = math.Max(plays, 1)
	return math.Min(1+p.MarginAlpha*(plays-1), p.MarginCap)
}

// SurpriseMultiplier grows as the pre-match probability moves away from a
// coin flip, up to SurpriseCap.
func (p Params) SurpriseMultiplier(prob float64) float64 {
	return math.Min(p.SurpriseNumerator/(p.SurpriseEpsilon+prob*(1-prob)), p.SurpriseCap)
}

// CapSwing bounds delta to ±SwingCap and reports whether it had to.
func (p Params) CapSwing(delta float64) (float64, bool) {
	switch {
	case delta > p.SwingCap:
		return p.SwingCap, true
	case delta < -p.SwingCap:
		return -p.SwingCap, true
	}
	return delta, false
}

// ActualScore maps a final score to 1, 0.5 or 0 from self's side.
func ActualScore(self, opp int) float64 {
	switch {
	case self > opp:
		return 1
	case self < opp:
		return 0
	default:
		return 0.5
	}
}
