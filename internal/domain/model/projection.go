package model

// ProjectionType tags an active projection row.
type ProjectionType string

// Projection row types.
const (
	ProjectionPrediction      ProjectionType = "prediction"
	ProjectionRegressionStart ProjectionType = "regression_start"
	ProjectionGame            ProjectionType = "game"
)

// Outcome of a completed projection row.
type Outcome string

// Outcomes; the empty Outcome means unresolved.
const (
	OutcomeWin  Outcome = "W"
	OutcomeLoss Outcome = "L"
	OutcomeTie  Outcome = "T"
)

// OutcomeOf returns the outcome for the side scoring self against opp.
func OutcomeOf(self, opp int) Outcome {
	switch {
	case self > opp:
		return OutcomeWin
	case self < opp:
		return OutcomeLoss
	default:
		return OutcomeTie
	}
}

// Projection is one forward-looking row per (period, sub-period, competitor).
// It is written as a prediction and completed in place once a result is known.
type Projection struct {
	Period                  int
	SubPeriod               int
	Competitor              string
	RatingBefore            float64
	RatingAfter             Nullable
	WinProbability          Nullable
	Type                    ProjectionType
	Outcome                 Outcome
	CompositeWinProbability Nullable
	CompositeEdge           Nullable
	TotalEdge               Nullable
}

// Key returns the row identity.
func (p Projection) Key() ProjectionKey {
	return ProjectionKey{Period: p.Period, SubPeriod: p.SubPeriod, Competitor: p.Competitor}
}

// Completed reports whether a result has been applied to the row.
func (p Projection) Completed() bool {
	return p.Type == ProjectionGame && p.RatingAfter.Valid()
}

// CurrentRating returns rating-after when present, else rating-before.
func (p Projection) CurrentRating() float64 {
	return p.RatingAfter.Or(p.RatingBefore)
}

// ProjectionKey identifies a projection row.
type ProjectionKey struct {
	Period     int
	SubPeriod  int
	Competitor string
}

// CompositeScore is one competitor's composite strength row.
type CompositeScore struct {
	Competitor string
	Offense    float64
	Disruption float64
	Resilience float64
	Defense    float64 // Disruption + Resilience
	Total      float64 // Offense + Defense
}

// ReportRow is one competitor line of a sub-period report.
type ReportRow struct {
	SubPeriod               int
	Matchup                 string // "home vs away"
	Competitor              string
	RatingBefore            float64
	WinProbability          Nullable
	CompositeWinProbability Nullable
	CompositeEdge           Nullable
	TotalEdge               Nullable
}
