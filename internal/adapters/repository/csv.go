package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/gridelo/internal/domain/model"
)

// table is a parsed CSV file addressed by header name.
type table struct {
	file   string
	header map[string]int
	rows   [][]string
}

// readTable loads path and checks that every required column is present.
// Header names are matched case-insensitively after trimming.
func readTable(ctx context.Context, path string, required ...string) (*table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: empty file", ErrMissingColumn, path)
	}

	t := &table{file: path, header: make(map[string]int, len(records[0])), rows: records[1:]}
	for i, h := range records[0] {
		t.header[normalizeHeader(h)] = i
	}
	for _, col := range required {
		if !t.has(col) {
			return nil, fmt.Errorf("%w: %s: %q", ErrMissingColumn, path, col)
		}
	}
	return t, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

func (t *table) has(col string) bool {
	_, ok := t.header[normalizeHeader(col)]
	return ok
}

// get returns the trimmed cell of row in col, or "" when absent.
func (t *table) get(row []string, col string) string {
	i, ok := t.header[normalizeHeader(col)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// malformed wraps a cell problem of the i-th data row.
func (t *table) malformed(i int, row []string, col, value, reason string) error {
	return &RowError{
		File: t.file,
		Line: i + 2,
		Err: fmt.Errorf("%w: %w", ErrMalformedRow, &model.ValidationError{
			Field:  col,
			Reason: fmt.Sprintf("%s: %q", reason, value),
			Ref:    t.ref(row),
		}),
	}
}

// ref identifies the match a row describes from whichever of the id, year,
// week and team columns the table has. Unparsable numbers are left zero.
func (t *table) ref(row []string) model.MatchRef {
	r := model.MatchRef{
		ID:   t.get(row, colID),
		Home: t.get(row, colHomeTeam),
		Away: t.get(row, colAwayTeam),
	}
	if r.Home == "" && r.Away == "" {
		r.Home, r.Away = t.get(row, colSchedHome), t.get(row, colSchedAway)
	}
	r.Period, _ = strconv.Atoi(t.get(row, colYear))
	r.SubPeriod, _ = strconv.Atoi(t.get(row, colWeek))
	return r
}

func (t *table) intCell(i int, row []string, col string) (int, error) {
	v := t.get(row, col)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, t.malformed(i, row, col, v, "not an integer")
	}
	return n, nil
}

func (t *table) floatCell(i int, row []string, col string) (float64, error) {
	v := t.get(row, col)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, t.malformed(i, row, col, v, "not a number")
	}
	return f, nil
}

func (t *table) nullableCell(i int, row []string, col string) (model.Nullable, error) {
	v := t.get(row, col)
	if strings.EqualFold(v, "nan") {
		return model.None(), nil
	}
	n, err := model.ParseNullable(v)
	if err != nil {
		return model.None(), t.malformed(i, row, col, v, "not a number")
	}
	return n, nil
}

// writeTable replaces path with header and rows. The file is written to a
// sibling temp file and renamed so readers never see a partial table.
func writeTable(ctx context.Context, path string, header []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, header, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func encode(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// formatFloat renders v with the fewest digits that round-trip.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNullable(n model.Nullable) string {
	v, ok := n.Get()
	if !ok {
		return ""
	}
	return formatFloat(v)
}
