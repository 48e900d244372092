package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	service "github.com/okian/gridelo/internal/app"
	"github.com/okian/gridelo/internal/domain/composite"
	"github.com/okian/gridelo/internal/domain/model"
	"github.com/okian/gridelo/internal/domain/standings"
)

const unset = "-"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
}

func printComposite(w io.Writer, res composite.Result) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "TEAM\tOSS\tDISRUPTION\tRESILIENCE\tDSS\tTSS\tIDENTITY")
	for _, s := range res.Scores {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%s\n",
			s.Competitor, s.Offense, s.Disruption, s.Resilience, s.Defense, s.Total, res.Identities[s.Competitor])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if n := len(res.Failures); n > 0 {
		fmt.Fprintf(w, "\n%d teams skipped for incomplete statistics\n", n)
	}
	return nil
}

func printPredictions(w io.Writer, season, week int, res service.PredictResult) error {
	fmt.Fprintf(w, "Season %d week %d predictions\n\n", season, week)
	tw := newTable(w)
	fmt.Fprintln(tw, "TEAM\tRATING\tWIN CHANCE")
	for _, p := range res.Added {
		fmt.Fprintf(tw, "%s\t%.1f\t%s\n", p.Competitor, p.RatingBefore, percent(p.WinProbability))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d rows added, %d games skipped\n", len(res.Added), len(res.Skipped))
	return nil
}

func printReport(w io.Writer, rows []model.ReportRow) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "WEEK\tMATCHUP\tTEAM\tRATING\tEXPECTED WIN\tTSS WIN\tTSS EDGE\tTOTAL EDGE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%s\t%s\t%s\t%s\n",
			r.SubPeriod, r.Matchup, r.Competitor, r.RatingBefore,
			r.WinProbability.Render("%.3f", unset),
			r.CompositeWinProbability.Render("%.3f", unset),
			r.CompositeEdge.Render("%+.3f", unset),
			r.TotalEdge.Render("%+.3f", unset),
		)
	}
	return tw.Flush()
}

func printMatchup(w io.Writer, a, b string, h service.HeadToHead) {
	fmt.Fprintf(w, "%s vs %s\n", a, b)
	fmt.Fprintf(w, "%s: OSS=%.3f DSS=%.3f TSS=%.3f\n", a, h.A.Offense, h.A.Defense, h.A.Total)
	fmt.Fprintf(w, "%s: OSS=%.3f DSS=%.3f TSS=%.3f\n", b, h.B.Offense, h.B.Defense, h.B.Total)
	fmt.Fprintf(w, "TSS win probability: %s %.1f%% | %s %.1f%%\n", a, 100*h.ProbabilityA, b, 100*h.ProbabilityB)
	fmt.Fprintf(w, "Edge vs 50/50: %s %+.1f%% | %s %+.1f%%\n", a, 100*h.EdgeA, b, 100*h.EdgeB)
}

func printStandings(w io.Writer, entries []standings.Entry) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "RANK\tTEAM\tRATING")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\n", e.Rank, e.Competitor, e.Rating)
	}
	return tw.Flush()
}

func printSummary(w io.Writer, season int, per []standings.PeriodSummary, league []standings.LeagueSummary) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "SEASON\tTEAM\tGAMES\tMEAN EXP WIN\tMEAN RATING\tMAX\tMIN\tMATCHUP DIFF")
	for _, s := range per {
		if season != 0 && s.Period != season {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.3f\t%.1f\t%.1f\t%.1f\t%+.1f\n",
			s.Period, s.Competitor, s.Games, s.MeanExpectedWin, s.MeanRating, s.MaxRating, s.MinRating, s.MeanMatchupDiff)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "SEASON\tGAMES\tLEAGUE MEAN EXP WIN")
	for _, l := range league {
		if season != 0 && l.Period != season {
			continue
		}
		fmt.Fprintf(tw, "%d\t%d\t%.4f\n", l.Period, l.Games, l.MeanExpectedWin)
	}
	return tw.Flush()
}

func percent(n model.Nullable) string {
	v, ok := n.Get()
	if !ok {
		return unset
	}
	return fmt.Sprintf("%.2f%%", 100*v)
}
