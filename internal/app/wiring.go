package service

import (
	"context"
	"fmt"

	"github.com/okian/gridelo/internal/adapters/repository"
	"github.com/okian/gridelo/internal/config"
	"github.com/okian/gridelo/internal/domain/composite"
	"github.com/okian/gridelo/internal/domain/dedupe"
	"github.com/okian/gridelo/internal/domain/edge"
	"github.com/okian/gridelo/internal/domain/rating"
	"github.com/okian/gridelo/pkg/logger"
)

// RatingParams converts the rating section of cfg.
func RatingParams(cfg *config.Config) (rating.Params, error) {
	r := cfg.Rating
	steps, err := r.StepSizeOverrides()
	if err != nil {
		return rating.Params{}, err
	}
	p := rating.Params{
		InitialRating:        r.InitialRating,
		HomeAdvantage:        r.HomeAdvantage,
		LogisticScale:        r.LogisticScale,
		LogitClamp:           r.LogitClamp,
		MarginPointsPerScore: r.MarginPointsPerScore,
		MarginMaxScores:      r.MarginMaxScores,
		MarginAlpha:          r.MarginAlpha,
		MarginCap:            r.MarginCap,
		SurpriseNumerator:    r.SurpriseNumerator,
		SurpriseEpsilon:      r.SurpriseEpsilon,
		SurpriseCap:          r.SurpriseCap,
		SwingCap:             r.SwingCap,
		RegressionWeight:     r.RegressionWeight,
		DefaultStepSize:      r.DefaultStepSize,
		StepSizes:            steps,
	}
	return p, p.Validate()
}

// CompositeParams converts the composite section of cfg.
func CompositeParams(cfg *config.Config) (composite.Params, error) {
	c := cfg.Composite
	w, err := composite.WeightsFromMaps(c.Offense, c.Defense)
	if err != nil {
		return composite.Params{}, err
	}
	p := composite.Params{
		Weights:        w,
		PassBias:       c.PassBias,
		RunBias:        c.RunBias,
		IdentitySource: composite.IdentitySource(c.IdentitySource),
	}
	return p, p.Validate()
}

// FromConfig builds a Service over the files named by cfg. The returned
// closer releases the projection store and must be called when done.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Service, func() error, error) {
	rp, err := RatingParams(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("rating params: %w", err)
	}
	cp, err := CompositeParams(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("composite params: %w", err)
	}
	fusion, err := edge.New(cfg.Composite.Scale)
	if err != nil {
		return nil, nil, err
	}

	closer := func() error { return nil }
	var projections repository.ProjectionStore
	switch cfg.ProjectionStore {
	case config.StoreSQLite:
		store, err := repository.OpenSQLiteProjectionStore(ctx, cfg.Path(cfg.ProjectionsFile),
			repository.WithLogger(log.Named("projection_store")))
		if err != nil {
			return nil, nil, err
		}
		projections, closer = store, store.Close
	default:
		projections = repository.NewCSVProjectionStore(cfg.Path(cfg.ProjectionsFile))
	}

	base := []Option{
		WithMatchSource(repository.NewMatchFile(cfg.Path(cfg.MatchesFile))),
		WithStatsSource(repository.NewStatsDir(cfg.Path(cfg.StatsDir))),
		WithScheduleSource(repository.NewScheduleFile(cfg.Path(cfg.ScheduleFile))),
		WithResultSource(repository.NewResultsFile(cfg.Path(cfg.ResultsFile))),
		WithHistoryStore(repository.NewHistoryFile(cfg.Path(cfg.HistoryFile))),
		WithCompositeStore(repository.NewCompositeFile(cfg.Path(cfg.CompositeFile))),
		WithProjectionStore(projections),
		WithDedupeGuard(dedupe.NewInMemoryGuard(dedupe.WithMaxSize(cfg.DedupeMaxSize))),
		WithRatingParams(rp),
		WithCompositeParams(cp),
		WithFusion(fusion),
		WithStatsPeriod(cfg.StatsPeriod),
		WithReportDir(cfg.Path(cfg.ReportDir)),
		WithPartialFailures(cfg.TolerateFailures),
		WithLogger(log),
	}
	return New(append(base, opts...)...), closer, nil
}
