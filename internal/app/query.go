package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/gridelo/internal/adapters/repository"
	"github.com/okian/gridelo/internal/domain/edge"
	"github.com/okian/gridelo/internal/domain/model"
	"github.com/okian/gridelo/internal/domain/standings"
	"github.com/okian/gridelo/pkg/logger"
	"github.com/okian/gridelo/pkg/metrics"
)

// ReportResult is the outcome of Report.
type ReportResult struct {
	Rows    []model.ReportRow
	Path    string // export file, empty unless exported
	Skipped []error
}

// Report lists both sides of every fixture in the sub-period with their
// rating, expected win and composite columns. With export set the rows are
// also written under the report directory.
func (s *Service) Report(ctx context.Context, period, subPeriod int, export bool) (ReportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res ReportResult
	if s.schedule == nil {
		return res, notConfigured("schedule source")
	}
	if s.projections == nil {
		return res, notConfigured("projection store")
	}
	rows, err := s.projections.Load(ctx)
	if err != nil {
		return res, fmt.Errorf("load projections: %w", err)
	}
	fixtures, err := s.schedule.Fixtures(ctx, period, subPeriod)
	if err != nil {
		return res, fmt.Errorf("load schedule: %w", err)
	}
	idx := indexRows(rows)

	for _, f := range fixtures {
		matchup := f.Home + " vs " + f.Away
		var pair []model.ReportRow
		for _, name := range []string{f.Home, f.Away} {
			i, ok := idx[model.ProjectionKey{Period: period, SubPeriod: subPeriod, Competitor: name}]
			if !ok {
				res.Skipped = append(res.Skipped, s.lookupMiss(ctx, f,
					&LookupError{What: "prediction", Period: period, SubPeriod: subPeriod, Competitor: name}))
				pair = nil
				break
			}
			r := rows[i]
			pair = append(pair, model.ReportRow{
				SubPeriod:               subPeriod,
				Matchup:                 matchup,
				Competitor:              name,
				RatingBefore:            r.RatingBefore,
				WinProbability:          r.WinProbability,
				CompositeWinProbability: r.CompositeWinProbability,
				CompositeEdge:           r.CompositeEdge,
				TotalEdge:               r.TotalEdge,
			})
		}
		res.Rows = append(res.Rows, pair...)
	}

	if export {
		if s.reportDir == "" {
			return res, notConfigured("report directory")
		}
		res.Path = repository.ReportPath(s.reportDir, subPeriod)
		if err := repository.SaveReport(ctx, res.Path, res.Rows); err != nil {
			return res, fmt.Errorf("export report: %w", err)
		}
		s.logger.Named(metrics.ComponentProjection).Info(ctx, "report exported",
			logger.String("path", res.Path), logger.Int("rows", len(res.Rows)))
	}
	return res, nil
}

// HeadToHead compares two competitors on composite score alone.
type HeadToHead struct {
	A, B         model.CompositeScore
	ProbabilityA float64
	ProbabilityB float64
	EdgeA        float64
	EdgeB        float64
}

// Matchup looks up both competitors' composite scores and converts the
// difference into a win probability and edge for each side.
func (s *Service) Matchup(ctx context.Context, a, b string) (HeadToHead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scores, err := s.loadComposites(ctx)
	if err != nil {
		return HeadToHead{}, err
	}
	sa, ok := scores.lookup(a)
	if !ok {
		return HeadToHead{}, &LookupError{What: "composite score", Competitor: a}
	}
	sb, ok := scores.lookup(b)
	if !ok {
		return HeadToHead{}, &LookupError{What: "composite score", Competitor: b}
	}
	p := s.fusion.CompositeWinProbability(sa.Total, sb.Total)
	return HeadToHead{
		A:            sa,
		B:            sb,
		ProbabilityA: p,
		ProbabilityB: 1 - p,
		EdgeA:        edge.Edge(p),
		EdgeB:        -edge.Edge(p),
	}, nil
}

// Standings ranks competitors by current rating. The active projection is
// used when one exists, else the final ratings of the history.
func (s *Service) Standings(ctx context.Context) ([]standings.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projections != nil {
		rows, err := s.projections.Load(ctx)
		switch {
		case err == nil:
			return standings.Rank(standings.FromProjections(rows)), nil
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("load projections: %w", err)
		}
	}
	records, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}
	return standings.Rank(standings.FromHistory(records)), nil
}

// Summary aggregates the game rows of the history per period and
// competitor, plus a league-wide mean per period.
func (s *Service) Summary(ctx context.Context) ([]standings.PeriodSummary, []standings.LeagueSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadHistory(ctx)
	if err != nil {
		return nil, nil, err
	}
	per, league := standings.Summarize(records)
	return per, league, nil
}

func (s *Service) loadHistory(ctx context.Context) ([]model.HistoryRecord, error) {
	if s.history == nil {
		return nil, notConfigured("history store")
	}
	records, err := s.history.LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return records, nil
}
