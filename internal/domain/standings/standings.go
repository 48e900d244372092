// Package standings ranks competitors and summarises their rating history.
package standings

import (
	"sort"

	"github.com/okian/gridelo/internal/domain/history"
	"github.com/okian/gridelo/internal/domain/model"
)

// Entry represents a standings row.
type Entry struct {
	Rank       int     `json:"rank"`
	Competitor string  `json:"competitor"`
	Rating     float64 `json:"rating"`
}

// Rank orders competitors by rating descending, breaking ties by name.
// Equal ratings share a rank.
func Rank(rows []history.Standing) []Entry {
	sorted := make([]history.Standing, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Rating != sorted[j].Rating {
			return sorted[i].Rating > sorted[j].Rating
		}
		return sorted[i].Competitor < sorted[j].Competitor
	})
	out := make([]Entry, len(sorted))
	for i, s := range sorted {
		rank := i + 1
		if i > 0 && s.Rating == sorted[i-1].Rating {
			rank = out[i-1].Rank
		}
		out[i] = Entry{Rank: rank, Competitor: s.Competitor, Rating: s.Rating}
	}
	return out
}

// FromHistory returns each competitor's rating after its latest record.
func FromHistory(records []model.HistoryRecord) []history.Standing {
	idx := make(map[string]int)
	var out []history.Standing
	for _, r := range records {
		if i, ok := idx[r.Competitor]; ok {
			out[i].Rating = r.RatingAfter
			continue
		}
		idx[r.Competitor] = len(out)
		out = append(out, history.Standing{Competitor: r.Competitor, Rating: r.RatingAfter})
	}
	return out
}

// FromProjections returns each competitor's current rating: rating-after of
// its latest row by (period, sub-period) when present, else rating-before.
// Rows with equal position keep their stored order.
func FromProjections(rows []model.Projection) []history.Standing {
	sorted := make([]model.Projection, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Period != sorted[j].Period {
			return sorted[i].Period < sorted[j].Period
		}
		return sorted[i].SubPeriod < sorted[j].SubPeriod
	})
	idx := make(map[string]int)
	var out []history.Standing
	for _, r := range sorted {
		if i, ok := idx[r.Competitor]; ok {
			out[i].Rating = r.CurrentRating()
			continue
		}
		idx[r.Competitor] = len(out)
		out = append(out, history.Standing{Competitor: r.Competitor, Rating: r.CurrentRating()})
	}
	return out
}
