package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/gridelo/internal/adapters/repository"
	"github.com/okian/gridelo/internal/domain/dedupe"
	"github.com/okian/gridelo/internal/domain/edge"
	"github.com/okian/gridelo/internal/domain/model"
	"github.com/okian/gridelo/internal/domain/names"
	"github.com/okian/gridelo/internal/domain/rating"
	"github.com/okian/gridelo/internal/domain/standings"
	"github.com/okian/gridelo/pkg/logger"
	"github.com/okian/gridelo/pkg/metrics"
)

// InitProjections replaces the active projection with one regression_start
// row per competitor, taken from the regression rows of the last period in
// the history. The rows open the following period at sub-period 0.
func (s *Service) InitProjections(ctx context.Context) ([]model.Projection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initProjections(ctx)
}

func (s *Service) initProjections(ctx context.Context) ([]model.Projection, error) {
	if s.history == nil {
		return nil, notConfigured("history store")
	}
	if s.projections == nil {
		return nil, notConfigured("projection store")
	}
	records, err := s.history.LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	last, found := 0, false
	for _, r := range records {
		if r.Type == model.EventRegression && (!found || r.Period > last) {
			last, found = r.Period, true
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: history has no regression rows", ErrLookup)
	}

	var rows []model.Projection
	for _, r := range records {
		if r.Type != model.EventRegression || r.Period != last {
			continue
		}
		rows = append(rows, model.Projection{
			Period:       last + 1,
			SubPeriod:    0,
			Competitor:   r.Competitor,
			RatingBefore: r.RatingAfter,
			RatingAfter:  model.Some(r.RatingAfter),
			Type:         model.ProjectionRegressionStart,
		})
	}
	if err := s.projections.Save(ctx, rows); err != nil {
		return nil, fmt.Errorf("save projections: %w", err)
	}
	s.logger.Named(metrics.ComponentProjection).Info(ctx, "active projection initialised",
		logger.Int("period", last+1), logger.Int("competitors", len(rows)))
	return rows, nil
}

// loadProjections reads the active projection, initialising it from the
// history when nothing has been saved yet.
func (s *Service) loadProjections(ctx context.Context) ([]model.Projection, error) {
	if s.projections == nil {
		return nil, notConfigured("projection store")
	}
	rows, err := s.projections.Load(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return s.initProjections(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load projections: %w", err)
	}
	return rows, nil
}

func indexRows(rows []model.Projection) map[model.ProjectionKey]int {
	idx := make(map[model.ProjectionKey]int, len(rows))
	for i, r := range rows {
		if _, ok := idx[r.Key()]; !ok {
			idx[r.Key()] = i
		}
	}
	return idx
}

func (s *Service) lookupMiss(ctx context.Context, f model.Fixture, err *LookupError) error {
	s.emit(ctx, metrics.ComponentProjection, rating.Event{
		Kind:       rating.KindLookupMiss,
		Ref:        model.MatchRef{Period: f.Period, SubPeriod: f.SubPeriod, Home: f.Home, Away: f.Away},
		Competitor: f.Home,
		Opponent:   f.Away,
		Detail:     err.What,
		Err:        err,
	})
	return err
}

// PredictResult is the outcome of Predict.
type PredictResult struct {
	Added   []model.Projection
	Skipped []error // lookup misses
}

// Predict appends a prediction row for both sides of every fixture in the
// sub-period. A competitor's current rating is the rating-after of its
// latest row, else its rating-before. Rows that already exist are kept.
func (s *Service) Predict(ctx context.Context, period, subPeriod int) (PredictResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res PredictResult
	if s.schedule == nil {
		return res, notConfigured("schedule source")
	}
	rows, err := s.loadProjections(ctx)
	if err != nil {
		return res, err
	}
	fixtures, err := s.schedule.Fixtures(ctx, period, subPeriod)
	if err != nil {
		return res, fmt.Errorf("load schedule: %w", err)
	}

	current := make(map[string]float64)
	for _, st := range standings.FromProjections(rows) {
		current[st.Competitor] = st.Rating
	}
	idx := indexRows(rows)

	for _, f := range fixtures {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		home, okHome := current[f.Home]
		away, okAway := current[f.Away]
		if !okHome || !okAway {
			missing := f.Home
			if okHome {
				missing = f.Away
			}
			res.Skipped = append(res.Skipped, s.lookupMiss(ctx, f,
				&LookupError{What: "rating", Period: period, SubPeriod: subPeriod, Competitor: missing}))
			continue
		}

		p := s.ratingParams.ExpectedWin(home, away, true)
		if p.Clamped {
			s.emit(ctx, metrics.ComponentProjection, rating.Event{
				Kind:       rating.KindClamp,
				Ref:        model.MatchRef{Period: period, SubPeriod: subPeriod, Home: f.Home, Away: f.Away},
				Competitor: f.Home,
				Opponent:   f.Away,
				Raw:        p.RawDiff,
				Value:      math.Copysign(s.ratingParams.LogitClamp, p.RawDiff),
			})
		}
		for _, side := range []struct {
			name   string
			rating float64
			prob   float64
		}{
			{f.Home, home, p.P},
			{f.Away, away, 1 - p.P},
		} {
			key := model.ProjectionKey{Period: period, SubPeriod: subPeriod, Competitor: side.name}
			if _, ok := idx[key]; ok {
				continue
			}
			row := model.Projection{
				Period:         period,
				SubPeriod:      subPeriod,
				Competitor:     side.name,
				RatingBefore:   side.rating,
				WinProbability: model.Some(side.prob),
				Type:           model.ProjectionPrediction,
			}
			idx[key] = len(rows)
			rows = append(rows, row)
			res.Added = append(res.Added, row)
		}
	}

	if len(res.Added) > 0 {
		if err := s.projections.Save(ctx, rows); err != nil {
			return res, fmt.Errorf("save projections: %w", err)
		}
	}
	metrics.RecordPrediction(len(res.Added))
	s.logger.Named(metrics.ComponentProjection).Info(ctx, "predictions written",
		logger.Int("period", period), logger.Int("sub_period", subPeriod),
		logger.Int("rows", len(res.Added)), logger.Int("skipped", len(res.Skipped)))
	return res, nil
}

// compositeIndex finds composite scores by full or statistics-table name.
type compositeIndex map[string]model.CompositeScore

func newCompositeIndex(scores []model.CompositeScore) compositeIndex {
	idx := make(compositeIndex, len(scores))
	for _, sc := range scores {
		idx[names.Key(sc.Competitor)] = sc
	}
	return idx
}

func (c compositeIndex) lookup(name string) (model.CompositeScore, bool) {
	if sc, ok := c[names.Key(names.StatsName(name))]; ok {
		return sc, true
	}
	sc, ok := c[names.Key(name)]
	return sc, ok
}

func (s *Service) loadComposites(ctx context.Context) (compositeIndex, error) {
	if s.composites == nil {
		return nil, notConfigured("composite store")
	}
	scores, err := s.composites.LoadComposite(ctx)
	if err != nil {
		return nil, fmt.Errorf("load composite scores: %w", err)
	}
	return newCompositeIndex(scores), nil
}

// FuseResult is the outcome of Fuse.
type FuseResult struct {
	Fused   int // fixtures whose rows received composite columns
	Skipped []error
}

// Fuse writes the composite probability, composite edge and total edge into
// both prediction rows of every fixture in the sub-period.
func (s *Service) Fuse(ctx context.Context, period, subPeriod int) (FuseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res FuseResult
	if s.schedule == nil {
		return res, notConfigured("schedule source")
	}
	rows, err := s.loadProjections(ctx)
	if err != nil {
		return res, err
	}
	scores, err := s.loadComposites(ctx)
	if err != nil {
		return res, err
	}
	fixtures, err := s.schedule.Fixtures(ctx, period, subPeriod)
	if err != nil {
		return res, fmt.Errorf("load schedule: %w", err)
	}
	idx := indexRows(rows)

	for _, f := range fixtures {
		miss := func(what, competitor string) {
			res.Skipped = append(res.Skipped, s.lookupMiss(ctx, f,
				&LookupError{What: what, Period: period, SubPeriod: subPeriod, Competitor: competitor}))
		}
		hi, ok := idx[model.ProjectionKey{Period: period, SubPeriod: subPeriod, Competitor: f.Home}]
		if !ok {
			miss("prediction", f.Home)
			continue
		}
		ai, ok := idx[model.ProjectionKey{Period: period, SubPeriod: subPeriod, Competitor: f.Away}]
		if !ok {
			miss("prediction", f.Away)
			continue
		}
		hp, ok := rows[hi].WinProbability.Get()
		if !ok {
			miss("win probability", f.Home)
			continue
		}
		hc, ok := scores.lookup(f.Home)
		if !ok {
			miss("composite score", f.Home)
			continue
		}
		ac, ok := scores.lookup(f.Away)
		if !ok {
			miss("composite score", f.Away)
			continue
		}

		m := s.fusion.Fuse(hp, hc.Total, ac.Total)
		setFused(&rows[hi], m.Home)
		setFused(&rows[ai], m.Away)
		res.Fused++
	}

	if res.Fused > 0 {
		if err := s.projections.Save(ctx, rows); err != nil {
			return res, fmt.Errorf("save projections: %w", err)
		}
	}
	s.logger.Named(metrics.ComponentProjection).Info(ctx, "composite edges fused",
		logger.Int("period", period), logger.Int("sub_period", subPeriod),
		logger.Int("fixtures", res.Fused), logger.Int("skipped", len(res.Skipped)))
	return res, nil
}

func setFused(row *model.Projection, side edge.Side) {
	row.CompositeWinProbability = model.Some(side.CompositeProbability)
	row.CompositeEdge = model.Some(side.CompositeEdge)
	row.TotalEdge = model.Some(side.TotalEdge)
}

// IngestResult is the outcome of Ingest.
type IngestResult struct {
	Applied    int
	Duplicates []error // results already applied, left untouched
	Skipped    []error // lookup misses
	Failures   []error // invalid results, populated only with partial failures
}

// Ingest completes the prediction rows of the sub-period with final scores:
// rating-after from one update step at the sub-period's step size, type game,
// and the W/L/T outcome. A result whose rows are already completed is
// rejected as a duplicate and changes nothing. Keys recorded in the guard by
// a call that fails are released again, so the results can be retried.
func (s *Service) Ingest(ctx context.Context, period, subPeriod int) (IngestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res IngestResult
	if s.results == nil {
		return res, notConfigured("result source")
	}
	rows, err := s.loadProjections(ctx)
	if err != nil {
		return res, err
	}
	results, rejected, err := s.results.Results(ctx, period, subPeriod)
	if err != nil {
		return res, fmt.Errorf("load results: %w", err)
	}
	if err := s.reject(ctx, metrics.ComponentProjection, rejected); err != nil {
		return res, fmt.Errorf("load results: %w", err)
	}
	res.Failures = append(res.Failures, rejected...)

	guard := s.guard
	if guard == nil {
		guard = dedupe.NewInMemoryGuard()
	}
	dedupe.Seed(ctx, guard, rows)
	idx := indexRows(rows)
	step := s.ratingParams.StepSize(subPeriod)

	var recorded []dedupe.Key
	fail := func(err error) (IngestResult, error) {
		for _, k := range recorded {
			guard.Unrecord(ctx, k)
		}
		return res, err
	}

	for _, m := range results {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		ref := m.Ref()
		if err := m.Validate(); err != nil {
			s.emit(ctx, metrics.ComponentProjection, rating.Event{Kind: rating.KindValidation, Ref: ref, Err: err})
			if !s.partial {
				return fail(err)
			}
			res.Failures = append(res.Failures, err)
			continue
		}

		homeKey := dedupe.GameKey(period, subPeriod, m.Home)
		awayKey := dedupe.GameKey(period, subPeriod, m.Away)
		duplicate := func() {
			dup := &dedupe.DuplicateUpdateError{Key: homeKey}
			s.emit(ctx, metrics.ComponentProjection, rating.Event{
				Kind: rating.KindDuplicate, Ref: ref, Competitor: m.Home, Opponent: m.Away, Err: dup,
			})
			res.Duplicates = append(res.Duplicates, dup)
		}
		if guard.Seen(ctx, homeKey) || guard.Seen(ctx, awayKey) {
			duplicate()
			continue
		}

		fixture := model.Fixture{Period: period, SubPeriod: subPeriod, Date: m.Date, Home: m.Home, Away: m.Away}
		hi, ok := idx[model.ProjectionKey{Period: period, SubPeriod: subPeriod, Competitor: m.Home}]
		if !ok {
			res.Skipped = append(res.Skipped, s.lookupMiss(ctx, fixture,
				&LookupError{What: "prediction", Period: period, SubPeriod: subPeriod, Competitor: m.Home}))
			continue
		}
		ai, ok := idx[model.ProjectionKey{Period: period, SubPeriod: subPeriod, Competitor: m.Away}]
		if !ok {
			res.Skipped = append(res.Skipped, s.lookupMiss(ctx, fixture,
				&LookupError{What: "prediction", Period: period, SubPeriod: subPeriod, Competitor: m.Away}))
			continue
		}
		// A bounded guard may have evicted the keys of completed rows.
		if rows[hi].Completed() || rows[ai].Completed() {
			duplicate()
			continue
		}

		out := s.ratingParams.Step(rating.StepInput{
			Self:      rows[hi].RatingBefore,
			Opponent:  rows[ai].RatingBefore,
			SelfScore: m.HomeScore,
			OppScore:  m.AwayScore,
			SelfHome:  true,
			StepSize:  step,
		})
		guard.SeenAndRecord(ctx, homeKey)
		guard.SeenAndRecord(ctx, awayKey)
		recorded = append(recorded, homeKey, awayKey)

		complete(&rows[hi], out.SelfAfter, out.Probability.P, model.OutcomeOf(m.HomeScore, m.AwayScore))
		complete(&rows[ai], out.OpponentAfter, 1-out.Probability.P, model.OutcomeOf(m.AwayScore, m.HomeScore))

		if out.Probability.Clamped {
			s.emit(ctx, metrics.ComponentProjection, rating.Event{
				Kind: rating.KindClamp, Ref: ref, Competitor: m.Home, Opponent: m.Away,
				Raw: out.Probability.RawDiff, Value: math.Copysign(s.ratingParams.LogitClamp, out.Probability.RawDiff),
			})
		}
		if out.Capped {
			s.emit(ctx, metrics.ComponentProjection, rating.Event{
				Kind: rating.KindCap, Ref: ref, Competitor: m.Home, Opponent: m.Away,
				Raw: out.RawDelta, Value: out.Delta,
			})
		}
		s.emit(ctx, metrics.ComponentProjection, rating.Event{
			Kind: rating.KindGame, Ref: ref, Competitor: m.Home, Opponent: m.Away,
			Raw: out.RawDelta, Value: out.Delta,
		})
		res.Applied++
	}

	if res.Applied > 0 {
		if err := s.projections.Save(ctx, rows); err != nil {
			res.Applied = 0
			return fail(fmt.Errorf("save projections: %w", err))
		}
	}
	for i := 0; i < res.Applied; i++ {
		metrics.RecordResultApplied()
	}
	s.logger.Named(metrics.ComponentProjection).Info(ctx, "results ingested",
		logger.Int("period", period), logger.Int("sub_period", subPeriod),
		logger.Int("applied", res.Applied), logger.Int("duplicates", len(res.Duplicates)),
		logger.Int("skipped", len(res.Skipped)), logger.Int("failures", len(res.Failures)))
	return res, nil
}

// complete fills a prediction row with its result. A row predicted without a
// probability takes the one used by the update.
func complete(row *model.Projection, after, prob float64, outcome model.Outcome) {
	row.RatingAfter = model.Some(after)
	row.Type = model.ProjectionGame
	row.Outcome = outcome
	if !row.WinProbability.Valid() {
		row.WinProbability = model.Some(prob)
	}
}
