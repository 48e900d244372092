package standings

import (
	"math"
	"sort"

	"github.com/okian/gridelo/internal/domain/model"
)

// PeriodSummary aggregates one competitor's game rows in one period.
type PeriodSummary struct {
	Period          int
	Competitor      string
	Games           int
	MeanExpectedWin float64
	MeanRating      float64
	MaxRating       float64
	MinRating       float64
	MeanMatchupDiff float64 // own rating-after minus the opponent's, averaged
}

// LeagueSummary aggregates every game row in one period.
type LeagueSummary struct {
	Period          int
	Games           int
	MeanExpectedWin float64
}

type acc struct {
	games   int
	winSum  float64
	rateSum float64
	max     float64
	min     float64
	diffSum float64
	diffs   int
}

// Summarize reduces the game rows of a history. Output is ordered by period
// then competitor.
func Summarize(records []model.HistoryRecord) ([]PeriodSummary, []LeagueSummary) {
	type key struct {
		period     int
		competitor string
	}
	byGame := make(map[string][]model.HistoryRecord)
	per := make(map[key]*acc)
	league := make(map[int]*LeagueSummary)

	for _, r := range records {
		if r.Type != model.EventGame {
			continue
		}
		byGame[r.ID] = append(byGame[r.ID], r)

		k := key{r.Period, r.Competitor}
		a, ok := per[k]
		if !ok {
			a = &acc{max: math.Inf(-1), min: math.Inf(1)}
			per[k] = a
		}
		a.games++
		a.rateSum += r.RatingAfter
		a.max = math.Max(a.max, r.RatingAfter)
		a.min = math.Min(a.min, r.RatingAfter)

		l, ok := league[r.Period]
		if !ok {
			l = &LeagueSummary{Period: r.Period}
			league[r.Period] = l
		}
		if p, ok := r.WinProbability.Get(); ok {
			a.winSum += p
			l.MeanExpectedWin += p
			l.Games++
		}
	}

	for _, r := range records {
		pair := byGame[r.ID]
		if r.Type != model.EventGame || len(pair) != 2 {
			continue
		}
		opp := pair[0]
		if opp.Competitor == r.Competitor {
			opp = pair[1]
		}
		a := per[key{r.Period, r.Competitor}]
		a.diffSum += r.RatingAfter - opp.RatingAfter
		a.diffs++
	}

	out := make([]PeriodSummary, 0, len(per))
	for k, a := range per {
		s := PeriodSummary{
			Period:     k.period,
			Competitor: k.competitor,
			Games:      a.games,
			MeanRating: a.rateSum / float64(a.games),
			MaxRating:  a.max,
			MinRating:  a.min,
		}
		s.MeanExpectedWin = a.winSum / float64(a.games)
		if a.diffs > 0 {
			s.MeanMatchupDiff = a.diffSum / float64(a.diffs)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return out[i].Competitor < out[j].Competitor
	})

	leagues := make([]LeagueSummary, 0, len(league))
	for _, l := range league {
		if l.Games > 0 {
			l.MeanExpectedWin /= float64(l.Games)
		}
		leagues = append(leagues, *l)
	}
	sort.Slice(leagues, func(i, j int) bool { return leagues[i].Period < leagues[j].Period })
	return out, leagues
}
