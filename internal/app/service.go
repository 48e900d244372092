// Package service wires the rating, composite and projection engines to
// their persistence collaborators and implements the batch operations the
// CLI exposes.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/gridelo/internal/adapters/repository"
	"github.com/okian/gridelo/internal/domain/composite"
	"github.com/okian/gridelo/internal/domain/dedupe"
	"github.com/okian/gridelo/internal/domain/edge"
	"github.com/okian/gridelo/internal/domain/model"
	"github.com/okian/gridelo/internal/domain/rating"
	"github.com/okian/gridelo/pkg/logger"
)

// Service runs the rating workflow. Operations are serialised; each one is a
// load, transform, save cycle over its stores.
type Service struct {
	mu sync.Mutex

	// Collaborators
	matches     repository.MatchSource
	stats       repository.StatsSource
	schedule    repository.ScheduleSource
	results     repository.ResultSource
	history     repository.HistoryStore
	composites  repository.CompositeStore
	projections repository.ProjectionStore
	guard       dedupe.Guard

	// Configuration
	ratingParams    rating.Params
	compositeParams composite.Params
	fusion          edge.Fusion
	statsPeriod     string
	reportDir       string
	partial         bool

	// Diagnostics
	observer rating.Observer
	logger   logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithMatchSource sets where completed historical matches come from.
func WithMatchSource(src repository.MatchSource) Option {
	return func(s *Service) { s.matches = src }
}

// WithStatsSource sets where per-feature statistics come from.
func WithStatsSource(src repository.StatsSource) Option {
	return func(s *Service) { s.stats = src }
}

// WithScheduleSource sets where upcoming fixtures come from.
func WithScheduleSource(src repository.ScheduleSource) Option {
	return func(s *Service) { s.schedule = src }
}

// WithResultSource sets where sub-period results come from.
func WithResultSource(src repository.ResultSource) Option {
	return func(s *Service) { s.results = src }
}

// WithHistoryStore sets the rating history store.
func WithHistoryStore(store repository.HistoryStore) Option {
	return func(s *Service) { s.history = store }
}

// WithCompositeStore sets the composite score store.
func WithCompositeStore(store repository.CompositeStore) Option {
	return func(s *Service) { s.composites = store }
}

// WithProjectionStore sets the active projection store.
func WithProjectionStore(store repository.ProjectionStore) Option {
	return func(s *Service) { s.projections = store }
}

// WithDedupeGuard sets the duplicate-update guard shared across Ingest
// calls. By default every Ingest seeds a fresh guard from the store.
func WithDedupeGuard(g dedupe.Guard) Option {
	return func(s *Service) { s.guard = g }
}

// WithRatingParams sets the rating engine constants.
func WithRatingParams(p rating.Params) Option {
	return func(s *Service) { s.ratingParams = p }
}

// WithCompositeParams sets the composite engine constants.
func WithCompositeParams(p composite.Params) Option {
	return func(s *Service) { s.compositeParams = p }
}

// WithFusion sets the composite probability scale.
func WithFusion(f edge.Fusion) Option {
	return func(s *Service) { s.fusion = f }
}

// WithStatsPeriod sets the statistics column read by ComputeComposite.
func WithStatsPeriod(period string) Option {
	return func(s *Service) {
		if period != "" {
			s.statsPeriod = period
		}
	}
}

// WithReportDir sets where Report exports land.
func WithReportDir(dir string) Option {
	return func(s *Service) { s.reportDir = dir }
}

// WithPartialFailures lets batch runs skip invalid records instead of
// aborting on the first one.
func WithPartialFailures(enabled bool) Option {
	return func(s *Service) { s.partial = enabled }
}

// WithObserver adds an observer that receives every engine event in
// addition to the logging and metrics sink.
func WithObserver(o rating.Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default engine constants.
func New(opts ...Option) *Service {
	fusion, _ := edge.New(edge.DefaultScale) //nolint:errcheck // positive constant
	s := &Service{
		ratingParams:    rating.DefaultParams(),
		compositeParams: composite.DefaultParams(),
		fusion:          fusion,
		statsPeriod:     "2024",
		logger:          logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// observe returns the sink for one component: log and metrics first, then
// the caller's observer.
func (s *Service) observe(component string) rating.Observer {
	return rating.MultiObserver{
		diagnostics{log: s.logger.Named(component), component: component},
		s.observer,
	}
}

func notConfigured(what string) error {
	return fmt.Errorf("%w: %s", ErrNotConfigured, what)
}

func (s *Service) emit(ctx context.Context, component string, ev rating.Event) {
	s.observe(component).Observe(ctx, ev)
}

// reject reports rows a source could not parse. Without partial failures the
// first one aborts the operation.
func (s *Service) reject(ctx context.Context, component string, rejected []error) error {
	for _, err := range rejected {
		ev := rating.Event{Kind: rating.KindValidation, Err: err}
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			ev.Ref = verr.Ref
		}
		s.emit(ctx, component, ev)
	}
	if len(rejected) > 0 && !s.partial {
		return rejected[0]
	}
	return nil
}
