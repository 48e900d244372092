package rating

import "math"

// StepInput is one side's view of a completed match.
type StepInput struct {
	Self      float64
	Opponent  float64
	SelfScore int
	OppScore  int
	SelfHome  bool
	StepSize  float64
}

// StepResult carries the post-match ratings and every intermediate value
// needed for diagnostics.
type StepResult struct {
	SelfAfter     float64
	OpponentAfter float64
	Probability   WinProbability
	Margin        float64
	Surprise      float64
	RawDelta      float64
	Delta         float64 // applied to self; the opponent receives -Delta
	Capped        bool
}

// Step applies one match. The update is zero-sum: the opponent's change is
// the exact negation of self's.
func (p Params) Step(in StepInput) StepResult {
	prob := p.ExpectedWin(in.Self, in.Opponent, in.SelfHome)
	margin := p.MarginMultiplier(math.Abs(float64(in.SelfScore - in.OppScore)))
	surprise := p.SurpriseMultiplier(prob.P)
	raw := in.StepSize * margin * surprise * (ActualScore(in.SelfScore, in.OppScore) - prob.P)
	delta, capped := p.CapSwing(raw)
	return StepResult{
		SelfAfter:     in.Self + delta,
		OpponentAfter: in.Opponent - delta,
		Probability:   prob,
		Margin:        margin,
		Surprise:      surprise,
		RawDelta:      raw,
		Delta:         delta,
		Capped:        capped,
	}
}
