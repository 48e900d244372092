package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

func historyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Rebuild the rating history from the stored matches",
		Long: heredoc.Doc(`
			history replays every stored match in (season, week, id) order,
			regresses all ratings toward the initial rating after each
			season's final week, and writes one row per team per game plus
			one regression row per team per season.
		`),
		Args: cobra.NoArgs,
		RunE: e.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			res, err := e.svc.RunHistory(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d matches over %d seasons, %d failures; history written to %s\n",
				res.Processed, res.Regressions, len(res.Failures), e.cfg.Path(e.cfg.HistoryFile))
			return nil
		}),
	}
}

func compositeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "composite",
		Short: "Compute composite strength scores from a statistics snapshot",
		Long: heredoc.Doc(`
			composite reads one <feature>.csv per statistic from the stats
			directory, normalises every feature across teams and combines
			them into offensive, defensive and total scores.
		`),
		Args: cobra.NoArgs,
		RunE: e.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			res, err := e.svc.ComputeComposite(ctx)
			if err != nil {
				return err
			}
			return printComposite(cmd.OutOrStdout(), res)
		}),
	}
}

func initCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Start the active projection from the last regressed ratings",
		Args:  cobra.NoArgs,
		RunE: e.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			rows, err := e.svc.InitProjections(ctx)
			if err != nil {
				return err
			}
			period := 0
			if len(rows) > 0 {
				period = rows[0].Period
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialised %d teams for season %d\n", len(rows), period)
			return nil
		}),
	}
}

// weekCommand builds a command taking one week argument and a --season flag.
func weekCommand(e *env, use, short, long string, fn func(ctx context.Context, cmd *cobra.Command, season, week int) error) *cobra.Command {
	var season int
	cmd := &cobra.Command{
		Use:   use + " <week>",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: e.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			week, err := strconv.Atoi(args[0])
			if err != nil || week < 0 {
				return fmt.Errorf("week must be a non-negative number, got %q", args[0])
			}
			if season == 0 {
				season = e.cfg.Season
			}
			return fn(ctx, cmd, season, week)
		}),
	}
	cmd.Flags().IntVarP(&season, "season", "s", 0, "Season (default from config)")
	return cmd
}

func predictCmd(e *env) *cobra.Command {
	return weekCommand(e, "predict", "Predict every scheduled game of a week",
		heredoc.Doc(`
			predict looks up each team's current rating in the active
			projection and appends a prediction row for both sides of every
			scheduled game. Games already predicted are left alone.
		`),
		func(ctx context.Context, cmd *cobra.Command, season, week int) error {
			res, err := e.svc.Predict(ctx, season, week)
			if err != nil {
				return err
			}
			return printPredictions(cmd.OutOrStdout(), season, week, res)
		})
}

func fuseCmd(e *env) *cobra.Command {
	return weekCommand(e, "fuse", "Blend composite scores into a week's predictions",
		heredoc.Doc(`
			fuse adds the composite win probability, composite edge and
			total edge to both prediction rows of every scheduled game.
		`),
		func(ctx context.Context, cmd *cobra.Command, season, week int) error {
			res, err := e.svc.Fuse(ctx, season, week)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fused %d games of week %d, %d skipped\n", res.Fused, week, len(res.Skipped))
			return nil
		})
}

func ingestCmd(e *env) *cobra.Command {
	return weekCommand(e, "ingest", "Apply a week's final scores to the active projection",
		heredoc.Doc(`
			ingest reads the week's final scores from the results file and
			completes the matching prediction rows. A result that was
			already applied is reported and skipped.
		`),
		func(ctx context.Context, cmd *cobra.Command, season, week int) error {
			res, err := e.svc.Ingest(ctx, season, week)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d results of week %d: %d duplicates, %d skipped, %d invalid\n",
				res.Applied, week, len(res.Duplicates), len(res.Skipped), len(res.Failures))
			return nil
		})
}

func reportCmd(e *env) *cobra.Command {
	var export bool
	cmd := weekCommand(e, "report", "Show a week's predictions and edges",
		heredoc.Doc(`
			report prints rating, expected win and composite edges for both
			sides of every scheduled game. Columns not computed yet print as
			"-". With --export the table is also written to
			<report_dir>/week_<n>_predictions.csv.
		`),
		func(ctx context.Context, cmd *cobra.Command, season, week int) error {
			res, err := e.svc.Report(ctx, season, week, export)
			if err != nil {
				return err
			}
			if err := printReport(cmd.OutOrStdout(), res.Rows); err != nil {
				return err
			}
			if res.Path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nexported to %s\n", res.Path)
			}
			return nil
		})
	cmd.Flags().BoolVarP(&export, "export", "e", false, "Also write the report as CSV")
	return cmd
}

func matchupCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "matchup <team-a> <team-b>",
		Short: "Compare two teams on composite score",
		Args:  cobra.ExactArgs(2),
		RunE: e.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			h, err := e.svc.Matchup(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			printMatchup(cmd.OutOrStdout(), args[0], args[1], h)
			return nil
		}),
	}
}

func standingsCmd(e *env) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Rank teams by current rating",
		Args:  cobra.NoArgs,
		RunE: e.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			entries, err := e.svc.Standings(ctx)
			if err != nil {
				return err
			}
			if top > 0 && top < len(entries) {
				entries = entries[:top]
			}
			return printStandings(cmd.OutOrStdout(), entries)
		}),
	}
	cmd.Flags().IntVarP(&top, "top", "n", 0, "Show only the first n teams")
	return cmd
}

func summaryCmd(e *env) *cobra.Command {
	var season int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarise the rating history per season and team",
		Args:  cobra.NoArgs,
		RunE: e.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			per, league, err := e.svc.Summary(ctx)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), season, per, league)
		}),
	}
	cmd.Flags().IntVarP(&season, "season", "s", 0, "Only this season")
	return cmd
}
