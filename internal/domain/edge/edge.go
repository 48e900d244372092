// Package edge blends rating-implied and composite-implied win probabilities
// into an edge over a coin flip.
package edge

import (
	"errors"
	"math"
)

// DefaultScale is the composite-score difference worth one decade of odds.
const DefaultScale = 150

// ErrInvalidScale is returned for a non-positive scale.
var ErrInvalidScale = errors.New("composite scale must be positive")

// Fusion converts composite scores to probabilities and blends edges.
type Fusion struct {
	scale float64
}

// New returns a Fusion using scale; zero selects DefaultScale.
func New(scale float64) (Fusion, error) {
	if scale == 0 {
		scale = DefaultScale
	}
	if scale < 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return Fusion{}, ErrInvalidScale
	}
	return Fusion{scale: scale}, nil
}

// CompositeWinProbability is the logistic probability that self beats opp.
// Composite differences are small, so no clamp is applied.
func (f Fusion) CompositeWinProbability(self, opp float64) float64 {
	return 1 / (1 + math.Pow(10, -(self-opp)/f.scale))
}

// Edge is a probability's distance from a coin flip.
func Edge(p float64) float64 { return p - 0.5 }

// Side is one competitor's fused view of a matchup.
type Side struct {
	RatingProbability    float64
	CompositeProbability float64
	RatingEdge           float64
	CompositeEdge        float64
	TotalEdge            float64
}

// Matchup holds both sides; their edges are exact negations.
type Matchup struct {
	Home Side
	Away Side
}

// Fuse blends the home side's rating probability with the composite scores
// of both sides. The away side is derived by negation so the pair is
// antisymmetric by construction.
func (f Fusion) Fuse(homeRatingProb, homeComposite, awayComposite float64) Matchup {
	cp := f.CompositeWinProbability(homeComposite, awayComposite)
	re := Edge(homeRatingProb)
	ce := Edge(cp)
	total := (re + ce) / 2
	return Matchup{
		Home: Side{
			RatingProbability:    homeRatingProb,
			CompositeProbability: cp,
			RatingEdge:           re,
			CompositeEdge:        ce,
			TotalEdge:            total,
		},
		Away: Side{
			RatingProbability:    1 - homeRatingProb,
			CompositeProbability: 1 - cp,
			RatingEdge:           -re,
			CompositeEdge:        -ce,
			TotalEdge:            -total,
		},
	}
}
