package repository

import (
	"context"
	"strconv"

	"github.com/okian/gridelo/internal/domain/model"
)

// ProjectionHeader is the column layout of the persisted active projection.
var ProjectionHeader = []string{
	"year", "week", "team", "elo_before", "elo_after", "expected_win",
	"type", "result", "tss_win_prob", "tss_edge", "total_edge",
}

// CSVProjectionStore keeps the active projection in one CSV file.
type CSVProjectionStore struct {
	path string
}

// NewCSVProjectionStore returns a ProjectionStore over path.
func NewCSVProjectionStore(path string) *CSVProjectionStore {
	return &CSVProjectionStore{path: path}
}

// Load reads every row in stored order.
func (s *CSVProjectionStore) Load(ctx context.Context) ([]model.Projection, error) {
	t, err := readTable(ctx, s.path, ProjectionHeader[:7]...)
	if err != nil {
		return nil, err
	}
	out := make([]model.Projection, 0, len(t.rows))
	for i, row := range t.rows {
		p := model.Projection{
			Competitor: t.get(row, "team"),
			Type:       model.ProjectionType(t.get(row, "type")),
			Outcome:    model.Outcome(t.get(row, "result")),
		}
		if p.Period, err = t.intCell(i, row, "year"); err != nil {
			return nil, err
		}
		if p.SubPeriod, err = t.intCell(i, row, "week"); err != nil {
			return nil, err
		}
		if p.RatingBefore, err = t.floatCell(i, row, "elo_before"); err != nil {
			return nil, err
		}
		for _, c := range []struct {
			col string
			dst *model.Nullable
		}{
			{"elo_after", &p.RatingAfter},
			{"expected_win", &p.WinProbability},
			{"tss_win_prob", &p.CompositeWinProbability},
			{"tss_edge", &p.CompositeEdge},
			{"total_edge", &p.TotalEdge},
		} {
			if *c.dst, err = t.nullableCell(i, row, c.col); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// Save replaces the file with rows in order.
func (s *CSVProjectionStore) Save(ctx context.Context, rows []model.Projection) error {
	out := make([][]string, len(rows))
	for i, p := range rows {
		out[i] = []string{
			strconv.Itoa(p.Period),
			strconv.Itoa(p.SubPeriod),
			p.Competitor,
			formatFloat(p.RatingBefore),
			formatNullable(p.RatingAfter),
			formatNullable(p.WinProbability),
			string(p.Type),
			string(p.Outcome),
			formatNullable(p.CompositeWinProbability),
			formatNullable(p.CompositeEdge),
			formatNullable(p.TotalEdge),
		}
	}
	return writeTable(ctx, s.path, ProjectionHeader, out)
}
