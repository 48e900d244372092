// Package rating implements the pairwise rating model: win probability,
// adjustment multipliers, the per-match update step and season regression.
//
// Everything here is a pure function of Params and its inputs. Diagnostic
// conditions (clamps and caps) are returned as flags; callers turn them into
// Events for their Observer.
package rating

import (
	"fmt"
	"math"
)

// Params holds every rating constant.
type Params struct {
	InitialRating float64 // rating assigned on first appearance and regression target
	HomeAdvantage float64 // added to the home side before differencing
	LogisticScale float64 // rating points per decade of odds
	LogitClamp    float64 // bound on |diff/scale| before exponentiation

	MarginPointsPerScore float64 // points per scoring play
	MarginMaxScores      float64 // lead cap, in scoring plays
	MarginAlpha          float64 // bonus per scoring play beyond the first
	MarginCap            float64

	SurpriseNumerator float64
	SurpriseEpsilon   float64
	SurpriseCap       float64

	SwingCap         float64 // bound on |delta| per match
	RegressionWeight float64 // share of the end-of-period rating kept

	DefaultStepSize float64
	StepSizes       map[int]float64 // sub-period overrides
}

// DefaultParams returns the calibrated constants.
func DefaultParams() Params {
	return Params{
		InitialRating:        1500,
		HomeAdvantage:        65,
		LogisticScale:        400,
		LogitClamp:           10,
		MarginPointsPerScore: 7,
		MarginMaxScores:      3.5,
		MarginAlpha:          0.3,
		MarginCap:            1.75,
		SurpriseNumerator:    2.2,
		SurpriseEpsilon:      0.001,
		SurpriseCap:          3.0,
		SwingCap:             50,
		RegressionWeight:     0.75,
		DefaultStepSize:      20,
		StepSizes: map[int]float64{
			19: 25,
			20: 30,
			21: 30,
			22: 40,
		},
	}
}

// StepSize returns the K-factor for a sub-period.
func (p Params) StepSize(subPeriod int) float64 {
	if k, ok := p.StepSizes[subPeriod]; ok {
		return k
	}
	return p.DefaultStepSize
}

// Validate rejects parameter sets that would divide by zero or invert a bound.
func (p Params) Validate() error {
	finite := []float64{
		p.InitialRating, p.HomeAdvantage, p.LogisticScale, p.LogitClamp,
		p.MarginPointsPerScore, p.MarginMaxScores, p.MarginAlpha, p.MarginCap,
		p.SurpriseNumerator, p.SurpriseEpsilon, p.SurpriseCap,
		p.SwingCap, p.RegressionWeight, p.DefaultStepSize,
	}
	for _, v := range finite {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite constant", ErrInvalidParams)
		}
	}
	switch {
	case p.LogisticScale <= 0:
		return fmt.Errorf("%w: logistic scale must be positive", ErrInvalidParams)
	case p.LogitClamp <= 0:
		return fmt.Errorf("%w: logit clamp must be positive", ErrInvalidParams)
	case p.MarginPointsPerScore <= 0:
		return fmt.Errorf("%w: margin points per score must be positive", ErrInvalidParams)
	case p.MarginCap < 1 || p.MarginMaxScores < 1:
		return fmt.Errorf("%w: margin bounds must be at least 1", ErrInvalidParams)
	case p.SurpriseEpsilon <= 0 || p.SurpriseCap <= 0:
		return fmt.Errorf("%w: surprise constants must be positive", ErrInvalidParams)
	case p.SwingCap <= 0:
		return fmt.Errorf("%w: swing cap must be positive", ErrInvalidParams)
	case p.RegressionWeight < 0 || p.RegressionWeight > 1:
		return fmt.Errorf("%w: regression weight must be within [0,1]", ErrInvalidParams)
	case p.DefaultStepSize <= 0:
		return fmt.Errorf("%w: default step size must be positive", ErrInvalidParams)
	}
	for sub, k := range p.StepSizes {
		if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
			return fmt.Errorf("%w: step size for sub-period %d must be positive", ErrInvalidParams, sub)
		}
	}
	return nil
}
