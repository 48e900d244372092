package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/gridelo/internal/domain/composite"
)

const colTeam = "team"

// StatsDir reads one <feature>.csv per statistical feature. Each file has a
// Team column and one column per period.
type StatsDir struct {
	dir string
}

// NewStatsDir returns a StatsSource over dir.
func NewStatsDir(dir string) *StatsDir { return &StatsDir{dir: dir} }

// Tables loads the period column of every named feature. Rows with an empty
// cell are left out so the engine reports the competitor as incomplete.
func (s *StatsDir) Tables(ctx context.Context, features []string, period string) (composite.Tables, error) {
	out := make(composite.Tables, len(features))
	for _, feature := range features {
		t, err := readTable(ctx, filepath.Join(s.dir, feature+".csv"), colTeam, period)
		if err != nil {
			return nil, err
		}
		cells := make([]composite.Cell, 0, len(t.rows))
		for i, row := range t.rows {
			raw := t.get(row, period)
			if raw == "" {
				continue
			}
			v, err := ParseStat(raw)
			if err != nil {
				return nil, t.malformed(i, row, period, raw, "not a number")
			}
			cells = append(cells, composite.Cell{Competitor: t.get(row, colTeam), Value: v})
		}
		out[feature] = cells
	}
	return out, nil
}

var errNotNumeric = errors.New("not a number")

// ParseStat parses a statistics cell. A trailing percent sign is stripped and
// the value divided by 100.
func ParseStat(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errNotNumeric, raw)
	}
	if pct {
		v /= 100
	}
	return v, nil
}
