package model

// EventType tags a history record.
type EventType string

// History event types.
const (
	EventGame       EventType = "game"
	EventRegression EventType = "regression"
)

// HistoryRecord is one audit row per competitor per processed event.
// Records are append-only.
type HistoryRecord struct {
	ID                  string
	Period              int
	SubPeriod           int
	Date                string
	Competitor          string
	RatingBefore        float64
	RatingAfter         float64
	WinProbability      Nullable // absent for regression rows
	PeriodStartBaseline float64
	NextPeriodBaseline  Nullable // regression rows only
	Type                EventType
}

// Delta is the rating change carried by the record.
func (r HistoryRecord) Delta() float64 { return r.RatingAfter - r.RatingBefore }
