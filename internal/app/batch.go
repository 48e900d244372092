package service

import (
	"context"
	"fmt"

	"github.com/okian/gridelo/internal/domain/composite"
	"github.com/okian/gridelo/internal/domain/history"
	"github.com/okian/gridelo/pkg/logger"
	"github.com/okian/gridelo/pkg/metrics"
)

// RunHistory rebuilds the full rating history from the match source and
// saves it. Ratings start from scratch on every run.
func (s *Service) RunHistory(ctx context.Context) (history.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.matches == nil {
		return history.Result{}, notConfigured("match source")
	}
	if s.history == nil {
		return history.Result{}, notConfigured("history store")
	}

	matches, rejected, err := s.matches.Matches(ctx)
	if err != nil {
		return history.Result{}, fmt.Errorf("load matches: %w", err)
	}
	if err := s.reject(ctx, metrics.ComponentHistory, rejected); err != nil {
		return history.Result{}, fmt.Errorf("load matches: %w", err)
	}

	engine, err := history.New(
		history.WithParams(s.ratingParams),
		history.WithObserver(s.observe(metrics.ComponentHistory)),
		history.WithPartialFailures(s.partial),
	)
	if err != nil {
		return history.Result{}, err
	}
	log := s.logger.Named(metrics.ComponentHistory)
	log.Info(ctx, "rating history started", logger.String("run_id", engine.RunID()), logger.Int("matches", len(matches)))

	res, err := engine.Run(ctx, matches)
	if err != nil {
		return res, err
	}
	res.Failures = append(rejected, res.Failures...)
	metrics.UpdateCompetitors(engine.Table().Len())

	if err := s.history.SaveHistory(ctx, res.Records); err != nil {
		return res, fmt.Errorf("save history: %w", err)
	}
	log.Info(ctx, "rating history saved",
		logger.String("run_id", engine.RunID()),
		logger.Int("processed", res.Processed),
		logger.Int("regressions", res.Regressions),
		logger.Int("failures", len(res.Failures)),
		logger.Int("competitors", engine.Table().Len()),
	)
	return res, nil
}

// ComputeComposite scores every competitor from the statistics snapshot of
// the configured period and saves the scores.
func (s *Service) ComputeComposite(ctx context.Context) (composite.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stats == nil {
		return composite.Result{}, notConfigured("statistics source")
	}
	if s.composites == nil {
		return composite.Result{}, notConfigured("composite store")
	}

	tables, err := s.stats.Tables(ctx, composite.AllFeatures(), s.statsPeriod)
	if err != nil {
		return composite.Result{}, fmt.Errorf("load statistics: %w", err)
	}

	engine, err := composite.New(
		composite.WithParams(s.compositeParams),
		composite.WithObserver(s.observe(metrics.ComponentComposite)),
		composite.WithPartialFailures(s.partial),
	)
	if err != nil {
		return composite.Result{}, err
	}
	res, err := engine.Compute(ctx, tables)
	if err != nil {
		return res, err
	}
	metrics.RecordCompositeScored(len(res.Scores))

	if err := s.composites.SaveComposite(ctx, res.Scores); err != nil {
		return res, fmt.Errorf("save composite scores: %w", err)
	}
	s.logger.Named(metrics.ComponentComposite).Info(ctx, "composite scores saved",
		logger.String("period", s.statsPeriod),
		logger.Int("competitors", len(res.Scores)),
		logger.Int("failures", len(res.Failures)),
	)
	return res, nil
}
