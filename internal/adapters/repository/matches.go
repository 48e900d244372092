package repository

import (
	"context"

	"github.com/okian/gridelo/internal/domain/model"
	"github.com/okian/gridelo/internal/domain/names"
)

// Match file columns.
const (
	colID        = "id"
	colYear      = "year"
	colWeek      = "week"
	colDate      = "date"
	colHomeTeam  = "home-team"
	colHomeScore = "home-score"
	colAwayTeam  = "away-team"
	colAwayScore = "away-score"
)

// MatchFile reads completed matches from a CSV with explicit home and away
// columns. Team names are mapped to their canonical form.
type MatchFile struct {
	path string
}

// NewMatchFile returns a MatchSource over path.
func NewMatchFile(path string) *MatchFile { return &MatchFile{path: path} }

// Matches returns every row that parses, in file order, plus one RowError
// per row that does not.
func (f *MatchFile) Matches(ctx context.Context) ([]model.Match, []error, error) {
	t, err := readTable(ctx, f.path, colID, colYear, colWeek, colHomeTeam, colHomeScore, colAwayTeam, colAwayScore)
	if err != nil {
		return nil, nil, err
	}
	out := make([]model.Match, 0, len(t.rows))
	var rejected []error
	for i, row := range t.rows {
		m, err := parseMatch(t, i, row)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		out = append(out, m)
	}
	return out, rejected, nil
}

func parseMatch(t *table, i int, row []string) (model.Match, error) {
	m := model.Match{
		ID:   t.get(row, colID),
		Date: t.get(row, colDate),
		Home: names.Canonical(t.get(row, colHomeTeam)),
		Away: names.Canonical(t.get(row, colAwayTeam)),
	}
	var err error
	if m.Period, err = t.intCell(i, row, colYear); err != nil {
		return m, err
	}
	if m.SubPeriod, err = t.intCell(i, row, colWeek); err != nil {
		return m, err
	}
	if m.HomeScore, err = t.intCell(i, row, colHomeScore); err != nil {
		return m, err
	}
	if m.AwayScore, err = t.intCell(i, row, colAwayScore); err != nil {
		return m, err
	}
	return m, nil
}
