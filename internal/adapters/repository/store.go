// Package repository defines the persistence collaborators of the rating
// workflow and their file-backed implementations.
package repository

import (
	"context"

	"github.com/okian/gridelo/internal/domain/composite"
	"github.com/okian/gridelo/internal/domain/model"
)

// MatchSource supplies completed matches with canonical competitor names.
// Rows that fail to parse come back in rejected, one *RowError each, next
// to the rows that parsed; err is reserved for the source as a whole.
type MatchSource interface {
	Matches(ctx context.Context) (matches []model.Match, rejected []error, err error)
}

// StatsSource supplies one table per statistical feature for a period column.
type StatsSource interface {
	Tables(ctx context.Context, features []string, period string) (composite.Tables, error)
}

// ScheduleSource supplies the unplayed fixtures of a sub-period.
type ScheduleSource interface {
	Fixtures(ctx context.Context, period, subPeriod int) ([]model.Fixture, error)
}

// ResultSource supplies the final scores of a sub-period. Rejected rows are
// reported as for MatchSource.
type ResultSource interface {
	Results(ctx context.Context, period, subPeriod int) (results []model.Match, rejected []error, err error)
}

// HistoryStore persists the rating history.
type HistoryStore interface {
	LoadHistory(ctx context.Context) ([]model.HistoryRecord, error)
	SaveHistory(ctx context.Context, records []model.HistoryRecord) error
}

// CompositeStore persists composite scores.
type CompositeStore interface {
	LoadComposite(ctx context.Context) ([]model.CompositeScore, error)
	SaveComposite(ctx context.Context, scores []model.CompositeScore) error
}

// ProjectionStore persists the active projection rows. Load returns
// ErrNotFound when nothing has been saved yet.
type ProjectionStore interface {
	Load(ctx context.Context) ([]model.Projection, error)
	Save(ctx context.Context, rows []model.Projection) error
}
