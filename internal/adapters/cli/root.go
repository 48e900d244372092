// Package cli defines the gridelo command tree.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	service "github.com/okian/gridelo/internal/app"
	"github.com/okian/gridelo/internal/config"
	"github.com/okian/gridelo/pkg/logger"
	"github.com/okian/gridelo/pkg/metrics"
)

// env is the per-invocation state shared by every command.
type env struct {
	cfg   *config.Config
	svc   *service.Service
	log   logger.Logger
	close func() error
}

// Root returns the gridelo command with every subcommand registered.
func Root() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:   "gridelo",
		Short: "Pairwise ratings, composite strength scores and weekly projections",
		Long: heredoc.Doc(`
			gridelo rates competitors from completed matches with a margin and
			surprise weighted Elo variant, scores them from season statistics,
			and keeps an active projection for the current season.

			Files are read from and written to the data directory; see --config
			for the layout. Diagnostics go to stderr, results to stdout.
		`),
		Args: cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd)
		},
	}

	// global flags
	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "YAML config file (default $GRIDELO_CONFIG)")
	flags.String("data-dir", "", "Base directory for every relative data file")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("metrics-file", "", "Write a Prometheus textfile here after the command")
	flags.Bool("partial", false, "Skip invalid records instead of aborting")
	flags.BoolP("trace", "t", false, "Show trace information")

	root.AddCommand(
		historyCmd(e),
		compositeCmd(e),
		initCmd(e),
		predictCmd(e),
		fuseCmd(e),
		ingestCmd(e),
		reportCmd(e),
		matchupCmd(e),
		standingsCmd(e),
		summaryCmd(e),
	)
	return root
}

// setup loads configuration, applies flag overrides, initialises logging
// and builds the service.
func (e *env) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return err
	}
	if f := cmd.Flag("data-dir"); f.Changed {
		cfg.DataDir = f.Value.String()
	}
	if f := cmd.Flag("metrics-file"); f.Changed {
		cfg.MetricsFile = f.Value.String()
	}
	if f := cmd.Flag("log-level"); f.Changed {
		cfg.LogLevel = f.Value.String()
	}
	if cmd.Flag("partial").Changed {
		cfg.TolerateFailures = true
	}
	if cmd.Flag("trace").Changed {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.InitWithWriter(cmd.ErrOrStderr(), cfg.LogFormat); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	e.log = logger.Get()
	metrics.Configure(
		metrics.WithCustomLabels(cfg.MetricsLabels),
		metrics.WithHistogramBuckets(cfg.MetricsDeltaBuckets),
	)

	svc, closer, err := service.FromConfig(ctx, cfg, e.log)
	if err != nil {
		return err
	}
	e.cfg, e.svc, e.close = cfg, svc, closer
	return nil
}

// run adapts fn to cobra and releases resources afterwards, whether or not
// fn failed.
func (e *env) run(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.Join(err, e.teardown())
		}()
		return fn(cmd.Context(), cmd, args)
	}
}

func (e *env) teardown() error {
	var errs []error
	if e.close != nil {
		errs = append(errs, e.close())
	}
	if e.cfg != nil {
		errs = append(errs, metrics.WriteTextfile(e.cfg.MetricsFile))
	}
	return errors.Join(errs...)
}
