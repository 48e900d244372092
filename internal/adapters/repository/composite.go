package repository

import (
	"context"

	"github.com/okian/gridelo/internal/domain/model"
)

// CompositeHeader is the column layout of the persisted composite scores.
var CompositeHeader = []string{"Team", "RawOSS", "Disruption", "Resilience", "RawDSS", "TSS"}

// CompositeFile persists composite scores as CSV.
type CompositeFile struct {
	path string
}

// NewCompositeFile returns a CompositeStore over path.
func NewCompositeFile(path string) *CompositeFile { return &CompositeFile{path: path} }

// SaveComposite replaces the file with scores in order.
func (f *CompositeFile) SaveComposite(ctx context.Context, scores []model.CompositeScore) error {
	rows := make([][]string, len(scores))
	for i, s := range scores {
		rows[i] = []string{
			s.Competitor,
			formatFloat(s.Offense),
			formatFloat(s.Disruption),
			formatFloat(s.Resilience),
			formatFloat(s.Defense),
			formatFloat(s.Total),
		}
	}
	return writeTable(ctx, f.path, CompositeHeader, rows)
}

// LoadComposite reads the file back. Disruption and Resilience are optional
// so older two-column outputs still load.
func (f *CompositeFile) LoadComposite(ctx context.Context) ([]model.CompositeScore, error) {
	t, err := readTable(ctx, f.path, "Team", "RawOSS", "RawDSS", "TSS")
	if err != nil {
		return nil, err
	}
	out := make([]model.CompositeScore, 0, len(t.rows))
	for i, row := range t.rows {
		s := model.CompositeScore{Competitor: t.get(row, "Team")}
		if s.Offense, err = t.floatCell(i, row, "RawOSS"); err != nil {
			return nil, err
		}
		if s.Defense, err = t.floatCell(i, row, "RawDSS"); err != nil {
			return nil, err
		}
		if s.Total, err = t.floatCell(i, row, "TSS"); err != nil {
			return nil, err
		}
		if t.has("Disruption") {
			if s.Disruption, err = t.floatCell(i, row, "Disruption"); err != nil {
				return nil, err
			}
		}
		if t.has("Resilience") {
			if s.Resilience, err = t.floatCell(i, row, "Resilience"); err != nil {
				return nil, err
			}
		}
		out = append(out, s)
	}
	return out, nil
}
