package rating

import "math"

// WinProbability is the result of ExpectedWin.
type WinProbability struct {
	P       float64 // probability that self wins, in (0,1)
	RawDiff float64 // (opponent - self) effective difference over scale, before clamping
	Clamped bool    // RawDiff fell outside the logit clamp
}

// ExpectedWin returns the probability that self beats opp. The home side's
// rating is raised by HomeAdvantage before differencing.
func (p Params) ExpectedWin(self, opp float64, selfHome bool) WinProbability {
	selfEff, oppEff := self, opp
	if selfHome {
		selfEff += p.HomeAdvantage
	} else {
		oppEff += p.HomeAdvantage
	}
	raw := (oppEff - selfEff) / p.LogisticScale
	diff := raw
	clamped := false
	switch {
	case diff > p.LogitClamp:
		diff, clamped = p.LogitClamp, true
	case diff < -p.LogitClamp:
		diff, clamped = -p.LogitClamp, true
	}
	return WinProbability{
		P:       1 / (1 + math.Pow(10, diff)),
		RawDiff: raw,
		Clamped: clamped,
	}
}
