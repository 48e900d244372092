package history

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/gridelo/internal/domain/model"
	"github.com/okian/gridelo/internal/domain/rating"
)

// Engine replays matches through the rating model. An Engine owns its Table;
// independent engines never share state. Not safe for concurrent use.
type Engine struct {
	params   rating.Params
	table    *Table
	observer rating.Observer
	partial  bool
	runID    string
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithParams sets the rating constants.
func WithParams(p rating.Params) Option {
	return func(e *Engine) {
		e.params = p
	}
}

// WithObserver sets the diagnostics sink.
func WithObserver(o rating.Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithPartialFailures lets Run skip invalid matches instead of stopping at
// the first one.
func WithPartialFailures(enabled bool) Option {
	return func(e *Engine) {
		e.partial = enabled
	}
}

// WithTable resumes from an existing table.
func WithTable(t *Table) Option {
	return func(e *Engine) {
		if t != nil {
			e.table = t
		}
	}
}

// WithRunID overrides the generated run identifier attached to events.
func WithRunID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.runID = id
		}
	}
}

// New constructs an Engine with default parameters.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		params:   rating.DefaultParams(),
		observer: rating.Nop,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.params.Validate(); err != nil {
		return nil, err
	}
	if e.table == nil {
		e.table = NewTable(e.params.InitialRating)
	}
	if e.runID == "" {
		e.runID = uuid.NewString()
	}
	return e, nil
}

// Table exposes the live rating table.
func (e *Engine) Table() *Table { return e.table }

// RunID identifies this engine in diagnostics.
func (e *Engine) RunID() string { return e.runID }

// Result summarises a Run.
type Result struct {
	Records     []model.HistoryRecord
	Processed   int
	Regressions int
	Failures    []error // populated only with partial failures enabled
}

// Run processes matches in (period, sub-period, identifier) order and closes
// every period with a regression after its final match. The input slice is
// not modified.
func (e *Engine) Run(ctx context.Context, matches []model.Match) (Result, error) {
	ms := make([]model.Match, len(matches))
	copy(ms, matches)
	model.SortMatches(ms)

	maxSub := make(map[int]int)
	for _, m := range ms {
		if cur, ok := maxSub[m.Period]; !ok || m.SubPeriod > cur {
			maxSub[m.Period] = m.SubPeriod
		}
	}

	var res Result
	for i, m := range ms {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		recs, err := e.Process(ctx, m)
		if err != nil {
			if !e.partial {
				return res, err
			}
			res.Failures = append(res.Failures, err)
		} else {
			res.Records = append(res.Records, recs...)
			res.Processed++
		}

		lastOfPeriod := i == len(ms)-1 || ms[i+1].Period != m.Period
		if lastOfPeriod && m.SubPeriod == maxSub[m.Period] {
			res.Records = append(res.Records, e.Regress(ctx, m.Period, maxSub[m.Period])...)
			res.Regressions++
		}
	}
	return res, nil
}

// Process applies a single match. The match is validated before the table is
// touched; on error the table is unchanged.
func (e *Engine) Process(ctx context.Context, m model.Match) ([]model.HistoryRecord, error) {
	if err := m.Validate(); err != nil {
		e.emit(ctx, rating.Event{Kind: rating.KindValidation, Ref: m.Ref(), Err: err})
		return nil, &MatchError{Match: m.Ref(), Err: err}
	}

	homeBefore, awayBefore := e.peek(m.Home), e.peek(m.Away)
	res := e.params.Step(rating.StepInput{
		Self:      homeBefore,
		Opponent:  awayBefore,
		SelfScore: m.HomeScore,
		OppScore:  m.AwayScore,
		SelfHome:  true,
		StepSize:  e.params.StepSize(m.SubPeriod),
	})
	if !finite(res.SelfAfter) || !finite(res.OpponentAfter) {
		err := fmt.Errorf("%w: %v/%v", ErrNonFinite, res.SelfAfter, res.OpponentAfter)
		e.emit(ctx, rating.Event{Kind: rating.KindValidation, Ref: m.Ref(), Err: err})
		return nil, &MatchError{Match: m.Ref(), Err: err}
	}

	e.table.Ensure(m.Home)
	e.table.Ensure(m.Away)
	homeBase := e.table.EnsureBaseline(m.Period, m.Home)
	awayBase := e.table.EnsureBaseline(m.Period, m.Away)
	e.table.Set(m.Home, res.SelfAfter)
	e.table.Set(m.Away, res.OpponentAfter)

	ref := m.Ref()
	if res.Probability.Clamped {
		e.emit(ctx, rating.Event{
			Kind:       rating.KindClamp,
			Ref:        ref,
			Competitor: m.Home,
			Opponent:   m.Away,
			Raw:        res.Probability.RawDiff,
			Value:      math.Copysign(e.params.LogitClamp, res.Probability.RawDiff),
		})
	}
	if res.Capped {
		e.emit(ctx, rating.Event{
			Kind:       rating.KindCap,
			Ref:        ref,
			Competitor: m.Home,
			Opponent:   m.Away,
			Raw:        res.RawDelta,
			Value:      res.Delta,
		})
	}
	e.emit(ctx, rating.Event{
		Kind:       rating.KindGame,
		Ref:        ref,
		Competitor: m.Home,
		Opponent:   m.Away,
		Raw:        res.RawDelta,
		Value:      res.Delta,
	})

	return []model.HistoryRecord{
		gameRecord(m, m.Home, homeBefore, res.SelfAfter, res.Probability.P, homeBase),
		gameRecord(m, m.Away, awayBefore, res.OpponentAfter, 1-res.Probability.P, awayBase),
	}, nil
}

func gameRecord(m model.Match, name string, before, after, prob, base float64) model.HistoryRecord {
	return model.HistoryRecord{
		ID:                  m.ID,
		Period:              m.Period,
		SubPeriod:           m.SubPeriod,
		Date:                m.Date,
		Competitor:          name,
		RatingBefore:        before,
		RatingAfter:         after,
		WinProbability:      model.Some(prob),
		PeriodStartBaseline: base,
		Type:                model.EventGame,
	}
}

// Regress closes a period: every competitor in the table is pulled toward the
// initial rating and its next-period baseline is fixed to the result.
func (e *Engine) Regress(ctx context.Context, period, maxSubPeriod int) []model.HistoryRecord {
	id := strconv.Itoa(period) + "-regression"
	date := "offseason " + strconv.Itoa(period)
	recs := make([]model.HistoryRecord, 0, e.table.Len())
	for _, name := range e.table.Competitors() {
		before, _ := e.table.Rating(name)
		after := e.params.Regress(before)
		base, ok := e.table.Baseline(period, name)
		if !ok {
			base = before
		}
		e.table.Set(name, after)
		next := e.table.setBaselineOnce(period+1, name, after)

		e.emit(ctx, rating.Event{
			Kind:       rating.KindRegression,
			Ref:        model.MatchRef{ID: id, Period: period, SubPeriod: maxSubPeriod + 1},
			Competitor: name,
			Raw:        before,
			Value:      after,
		})
		recs = append(recs, model.HistoryRecord{
			ID:                  id,
			Period:              period,
			SubPeriod:           maxSubPeriod + 1,
			Date:                date,
			Competitor:          name,
			RatingBefore:        before,
			RatingAfter:         after,
			PeriodStartBaseline: base,
			NextPeriodBaseline:  model.Some(next),
			Type:                model.EventRegression,
		})
	}
	return recs
}

func (e *Engine) emit(ctx context.Context, ev rating.Event) {
	ev.RunID = e.runID
	e.observer.Observe(ctx, ev)
}

// peek reads a rating without seeding the table.
func (e *Engine) peek(name string) float64 {
	if r, ok := e.table.Rating(name); ok {
		return r
	}
	return e.params.InitialRating
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
