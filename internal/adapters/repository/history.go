package repository

import (
	"context"
	"strconv"

	"github.com/okian/gridelo/internal/domain/model"
)

// HistoryHeader is the column layout of the persisted rating history.
var HistoryHeader = []string{
	"id", "year", "week", "date", "team",
	"elo_before", "elo_after", "expected_win",
	"season_start_elo", "type", "next_season_start_elo",
}

// HistoryFile persists HistoryRecords as CSV. Output is a pure function of
// the records, so identical runs produce identical bytes.
type HistoryFile struct {
	path string
}

// NewHistoryFile returns a HistoryStore over path.
func NewHistoryFile(path string) *HistoryFile { return &HistoryFile{path: path} }

// SaveHistory replaces the file with records in order.
func (f *HistoryFile) SaveHistory(ctx context.Context, records []model.HistoryRecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.ID,
			strconv.Itoa(r.Period),
			strconv.Itoa(r.SubPeriod),
			r.Date,
			r.Competitor,
			formatFloat(r.RatingBefore),
			formatFloat(r.RatingAfter),
			formatNullable(r.WinProbability),
			formatFloat(r.PeriodStartBaseline),
			string(r.Type),
			formatNullable(r.NextPeriodBaseline),
		}
	}
	return writeTable(ctx, f.path, HistoryHeader, rows)
}

// LoadHistory reads the file back.
func (f *HistoryFile) LoadHistory(ctx context.Context) ([]model.HistoryRecord, error) {
	t, err := readTable(ctx, f.path, HistoryHeader[:10]...)
	if err != nil {
		return nil, err
	}
	out := make([]model.HistoryRecord, 0, len(t.rows))
	for i, row := range t.rows {
		r := model.HistoryRecord{
			ID:         t.get(row, "id"),
			Date:       t.get(row, "date"),
			Competitor: t.get(row, "team"),
			Type:       model.EventType(t.get(row, "type")),
		}
		if r.Period, err = t.intCell(i, row, "year"); err != nil {
			return nil, err
		}
		if r.SubPeriod, err = t.intCell(i, row, "week"); err != nil {
			return nil, err
		}
		if r.RatingBefore, err = t.floatCell(i, row, "elo_before"); err != nil {
			return nil, err
		}
		if r.RatingAfter, err = t.floatCell(i, row, "elo_after"); err != nil {
			return nil, err
		}
		if r.WinProbability, err = t.nullableCell(i, row, "expected_win"); err != nil {
			return nil, err
		}
		if r.PeriodStartBaseline, err = t.floatCell(i, row, "season_start_elo"); err != nil {
			return nil, err
		}
		if r.NextPeriodBaseline, err = t.nullableCell(i, row, "next_season_start_elo"); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
