package composite

import "fmt"

// Weight keys that are not feature names.
const (
	RushingTDRunKey   = "rushing_touchdowns_per_game_run"
	PassingTDRunKey   = "passing_touchdowns_per_game_run"
	TakeawaysBonusKey = "takeaways_bonus"
)

// Weights are the hand-set coefficients of the composite formulas. Negative
// values mark features where lower is better.
type Weights struct {
	// baseline
	ThirdDown   float64
	Yards       float64
	FourthDowns float64

	// pass-leaning production
	PassTD        float64
	PasserRating  float64
	Interceptions float64 // also used by run-leaning production
	Sacked        float64
	RushTDSupport float64

	// run-leaning production
	RushYards      float64
	RushFirstDowns float64
	RushTDRun      float64
	PassTDRun      float64

	// disruption
	DefSacks         float64
	OppInterceptions float64
	OppFumbles       float64
	TakeawaysBonus   float64

	// resilience
	OppTouchdowns  float64
	OppYards       float64
	OppRedZone     float64
	OppFourthDowns float64
}

// DefaultWeights returns the calibrated coefficients.
func DefaultWeights() Weights {
	return Weights{
		ThirdDown:        1.0,
		Yards:            0.9,
		FourthDowns:      -1.0,
		PassTD:           1.1,
		PasserRating:     1.5,
		Interceptions:    -1.8,
		Sacked:           -0.6,
		RushTDSupport:    0.5,
		RushYards:        1.0,
		RushFirstDowns:   0.7,
		RushTDRun:        1.3,
		PassTDRun:        0.5,
		DefSacks:         0.95,
		OppInterceptions: 1.3,
		OppFumbles:       1.0,
		TakeawaysBonus:   0.5,
		OppTouchdowns:    -1.6,
		OppYards:         -1.1,
		OppRedZone:       -1.4,
		OppFourthDowns:   0.6,
	}
}

// WeightsFromMaps overlays named coefficients on the defaults. Keys follow
// the feature table names; unknown keys are rejected.
func WeightsFromMaps(offense, defense map[string]float64) (Weights, error) {
	w := DefaultWeights()
	off := map[string]*float64{
		ThirdDownConversion: &w.ThirdDown,
		YardsPerGame:        &w.Yards,
		FourthDownsPerGame:  &w.FourthDowns,
		PassingTDPerGame:    &w.PassTD,
		PasserRating:        &w.PasserRating,
		InterceptionsThrown: &w.Interceptions,
		QBSackedPerGame:     &w.Sacked,
		RushingTDPerGame:    &w.RushTDSupport,
		RushingYardsPerGame: &w.RushYards,
		RushingFirstDowns:   &w.RushFirstDowns,
		RushingTDRunKey:     &w.RushTDRun,
		PassingTDRunKey:     &w.PassTDRun,
	}
	def := map[string]*float64{
		QBSackedPerGame:    &w.DefSacks,
		OppInterceptions:   &w.OppInterceptions,
		OppFumbles:         &w.OppFumbles,
		TakeawaysBonusKey:  &w.TakeawaysBonus,
		OppTouchdowns:      &w.OppTouchdowns,
		OppYardsPerGame:    &w.OppYards,
		OppRedZoneTDOnly:   &w.OppRedZone,
		OppFourthDownsGame: &w.OppFourthDowns,
	}
	for k, v := range offense {
		dst, ok := off[k]
		if !ok {
			return Weights{}, fmt.Errorf("%w: unknown offense weight %q", ErrInvalidParams, k)
		}
		*dst = v
	}
	for k, v := range defense {
		dst, ok := def[k]
		if !ok {
			return Weights{}, fmt.Errorf("%w: unknown defense weight %q", ErrInvalidParams, k)
		}
		*dst = v
	}
	return w, nil
}
