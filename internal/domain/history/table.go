// Package history drives the rating model over a time-ordered match stream,
// owning the live rating table and emitting the audit history.
package history

// baselineKey identifies a period-start baseline.
type baselineKey struct {
	period     int
	competitor string
}

// Table is the live rating table. Competitors are kept in first-seen order
// so every iteration is deterministic.
type Table struct {
	initial   float64
	order     []string
	ratings   map[string]float64
	baselines map[baselineKey]float64
}

// NewTable returns an empty table that lazily seeds competitors with initial.
func NewTable(initial float64) *Table {
	return &Table{
		initial:   initial,
		ratings:   make(map[string]float64),
		baselines: make(map[baselineKey]float64),
	}
}

// Ensure returns the competitor's rating, seeding it on first appearance.
func (t *Table) Ensure(name string) float64 {
	if r, ok := t.ratings[name]; ok {
		return r
	}
	t.ratings[name] = t.initial
	t.order = append(t.order, name)
	return t.initial
}

// Rating returns the competitor's rating.
func (t *Table) Rating(name string) (float64, bool) {
	r, ok := t.ratings[name]
	return r, ok
}

// Set overwrites the rating of a competitor, seeding it if unseen.
func (t *Table) Set(name string, r float64) {
	t.Ensure(name)
	t.ratings[name] = r
}

// Competitors returns the competitors in first-seen order.
func (t *Table) Competitors() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of competitors.
func (t *Table) Len() int { return len(t.order) }

// Baseline returns the start-of-period rating of a competitor.
func (t *Table) Baseline(period int, name string) (float64, bool) {
	b, ok := t.baselines[baselineKey{period, name}]
	return b, ok
}

// EnsureBaseline returns the start-of-period baseline, setting it on first
// use. Regression pre-populates the next period, so a missing entry means
// the competitor has no regressed value to carry and starts from the
// initial rating.
func (t *Table) EnsureBaseline(period int, name string) float64 {
	k := baselineKey{period, name}
	if b, ok := t.baselines[k]; ok {
		return b
	}
	t.baselines[k] = t.initial
	return t.initial
}

// setBaselineOnce records a baseline unless one already exists.
func (t *Table) setBaselineOnce(period int, name string, v float64) float64 {
	k := baselineKey{period, name}
	if b, ok := t.baselines[k]; ok {
		return b
	}
	t.baselines[k] = v
	return v
}

// Standing is a competitor with its current rating.
type Standing struct {
	Competitor string
	Rating     float64
}
