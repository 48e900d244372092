package repository

import (
	"context"
	"fmt"

	"github.com/okian/gridelo/internal/domain/model"
	"github.com/okian/gridelo/internal/domain/names"
)

// Schedule and results columns.
const (
	colSchedHome      = "home team"
	colSchedAway      = "away team"
	colSchedHomeScore = "home score"
	colSchedAwayScore = "away score"
)

// ScheduleFile reads upcoming fixtures. The year column is optional; rows
// without it belong to every period.
type ScheduleFile struct {
	path string
}

// NewScheduleFile returns a ScheduleSource over path.
func NewScheduleFile(path string) *ScheduleFile { return &ScheduleFile{path: path} }

// Fixtures returns the fixtures of one sub-period in file order.
func (f *ScheduleFile) Fixtures(ctx context.Context, period, subPeriod int) ([]model.Fixture, error) {
	t, err := readTable(ctx, f.path, colWeek, colSchedHome, colSchedAway)
	if err != nil {
		return nil, err
	}
	var out []model.Fixture
	for i, row := range t.rows {
		ok, err := inSubPeriod(t, i, row, period, subPeriod)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, model.Fixture{
			Period:    period,
			SubPeriod: subPeriod,
			Date:      t.get(row, colDate),
			Home:      names.Canonical(t.get(row, colSchedHome)),
			Away:      names.Canonical(t.get(row, colSchedAway)),
		})
	}
	return out, nil
}

// ResultsFile reads final scores in the schedule layout plus score columns.
type ResultsFile struct {
	path string
}

// NewResultsFile returns a ResultSource over path.
func NewResultsFile(path string) *ResultsFile { return &ResultsFile{path: path} }

// Results returns the completed matches of one sub-period. Rows without an
// id column get "<period>-<subPeriod>-<n>". Rows whose week, year or scores
// do not parse are returned in rejected, whatever week they claim.
func (f *ResultsFile) Results(ctx context.Context, period, subPeriod int) ([]model.Match, []error, error) {
	t, err := readTable(ctx, f.path, colWeek, colSchedHome, colSchedHomeScore, colSchedAway, colSchedAwayScore)
	if err != nil {
		return nil, nil, err
	}
	var (
		out      []model.Match
		rejected []error
		n        int // rows of the sub-period so far
	)
	for i, row := range t.rows {
		ok, err := inSubPeriod(t, i, row, period, subPeriod)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		if !ok {
			continue
		}
		n++
		m := model.Match{
			ID:        t.get(row, colID),
			Period:    period,
			SubPeriod: subPeriod,
			Date:      t.get(row, colDate),
			Home:      names.Canonical(t.get(row, colSchedHome)),
			Away:      names.Canonical(t.get(row, colSchedAway)),
		}
		if m.ID == "" {
			m.ID = fmt.Sprintf("%d-%d-%d", period, subPeriod, n)
		}
		if m.HomeScore, err = t.intCell(i, row, colSchedHomeScore); err != nil {
			rejected = append(rejected, err)
			continue
		}
		if m.AwayScore, err = t.intCell(i, row, colSchedAwayScore); err != nil {
			rejected = append(rejected, err)
			continue
		}
		out = append(out, m)
	}
	return out, rejected, nil
}

func inSubPeriod(t *table, i int, row []string, period, subPeriod int) (bool, error) {
	week, err := t.intCell(i, row, colWeek)
	if err != nil {
		return false, err
	}
	if week != subPeriod {
		return false, nil
	}
	if t.has(colYear) && t.get(row, colYear) != "" {
		year, err := t.intCell(i, row, colYear)
		if err != nil {
			return false, err
		}
		return year == period, nil
	}
	return true, nil
}
