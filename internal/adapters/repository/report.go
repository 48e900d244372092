package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/okian/gridelo/internal/domain/model"
)

// ReportHeader is the column layout of an exported sub-period report.
var ReportHeader = []string{
	"week", "matchup", "team", "elo_before", "expected_win",
	"tss_win_prob", "tss_edge", "total_edge",
}

// ReportPath returns the export file for a sub-period under dir.
func ReportPath(dir string, subPeriod int) string {
	return filepath.Join(dir, fmt.Sprintf("week_%d_predictions.csv", subPeriod))
}

// SaveReport writes rows to path. Unset optional cells are left empty.
func SaveReport(ctx context.Context, path string, rows []model.ReportRow) error {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			strconv.Itoa(r.SubPeriod),
			r.Matchup,
			r.Competitor,
			formatFloat(r.RatingBefore),
			formatNullable(r.WinProbability),
			formatNullable(r.CompositeWinProbability),
			formatNullable(r.CompositeEdge),
			formatNullable(r.TotalEdge),
		}
	}
	return writeTable(ctx, path, ReportHeader, out)
}
