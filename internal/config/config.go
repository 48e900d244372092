// Package config defines process configuration and loading hooks.
//
// Conventions:
// - Defaults come from New(ctx); Load layers a YAML file and env vars on top.
// - Every engine constant is configurable; the defaults are the calibrated values.
// - Relative file names resolve against DataDir.
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
)

// Projection store backends.
const (
	StoreCSV    = "csv"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log records.
	LogFormat string `koanf:"log_format"`

	// DataDir is the base directory for every relative file below.
	DataDir string `koanf:"data_dir"`

	MatchesFile     string `koanf:"matches_file"`
	HistoryFile     string `koanf:"history_file"`
	StatsDir        string `koanf:"stats_dir"`
	CompositeFile   string `koanf:"composite_file"`
	ScheduleFile    string `koanf:"schedule_file"`
	ResultsFile     string `koanf:"results_file"`
	ProjectionsFile string `koanf:"projections_file"`
	ReportDir       string `koanf:"report_dir"`

	// ProjectionStore selects the active projection backend: csv or sqlite.
	ProjectionStore string `koanf:"projection_store"`

	// Season is the period used by the projection workflow.
	Season int `koanf:"season"`

	// StatsPeriod is the column read from each statistics table.
	StatsPeriod string `koanf:"stats_period"`

	// MetricsFile, when set, receives a Prometheus textfile dump after each command.
	MetricsFile string `koanf:"metrics_file"`

	// MetricsLabels are constant labels attached to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsDeltaBuckets overrides the rating-delta histogram buckets.
	MetricsDeltaBuckets []float64 `koanf:"metrics_delta_buckets"`

	// TolerateFailures lets batch runs skip invalid records instead of aborting.
	TolerateFailures bool `koanf:"tolerate_failures"`

	// DedupeMaxSize bounds the duplicate-update guard; 0 keeps every key.
	DedupeMaxSize int `koanf:"dedupe_max_size"`

	Rating    RatingConfig    `koanf:"rating"`
	Composite CompositeConfig `koanf:"composite"`
}

// RatingConfig holds the rating engine constants.
type RatingConfig struct {
	InitialRating        float64            `koanf:"initial_rating"`
	HomeAdvantage        float64            `koanf:"home_advantage"`
	LogisticScale        float64            `koanf:"logistic_scale"`
	LogitClamp           float64            `koanf:"logit_clamp"`
	MarginPointsPerScore float64            `koanf:"margin_points_per_score"`
	MarginMaxScores      float64            `koanf:"margin_max_scores"`
	MarginAlpha          float64            `koanf:"margin_alpha"`
	MarginCap            float64            `koanf:"margin_cap"`
	SurpriseNumerator    float64            `koanf:"surprise_numerator"`
	SurpriseEpsilon      float64            `koanf:"surprise_epsilon"`
	SurpriseCap          float64            `koanf:"surprise_cap"`
	SwingCap             float64            `koanf:"swing_cap"`
	RegressionWeight     float64            `koanf:"regression_weight"`
	DefaultStepSize      float64            `koanf:"default_step_size"`
	StepSizes            map[string]float64 `koanf:"step_sizes"`
}

// CompositeConfig holds the composite score constants.
type CompositeConfig struct {
	PassBias       float64            `koanf:"pass_bias"`
	RunBias        float64            `koanf:"run_bias"`
	Scale          float64            `koanf:"scale"`
	IdentitySource string             `koanf:"identity_source"`
	Offense        map[string]float64 `koanf:"offense"`
	Defense        map[string]float64 `koanf:"defense"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		DataDir:         filepath.Join(xdg.DataHome, "gridelo"),
		MatchesFile:     "matches.csv",
		HistoryFile:     "rating_history.csv",
		StatsDir:        "stats",
		CompositeFile:   "composite_scores.csv",
		ScheduleFile:    "schedule.csv",
		ResultsFile:     "results.csv",
		ProjectionsFile: "projections.csv",
		ReportDir:       "reports",
		ProjectionStore: StoreCSV,
		Season:          2025,
		StatsPeriod:     "2024",
		Rating: RatingConfig{
			InitialRating:        1500,
			HomeAdvantage:        65,
			LogisticScale:        400,
			LogitClamp:           10,
			MarginPointsPerScore: 7,
			MarginMaxScores:      3.5,
			MarginAlpha:          0.3,
			MarginCap:            1.75,
			SurpriseNumerator:    2.2,
			SurpriseEpsilon:      0.001,
			SurpriseCap:          3.0,
			SwingCap:             50,
			RegressionWeight:     0.75,
			DefaultStepSize:      20,
			StepSizes: map[string]float64{
				"19": 25,
				"20": 30,
				"21": 30,
				"22": 40,
			},
		},
		Composite: CompositeConfig{
			PassBias:       1.2,
			RunBias:        0.8,
			Scale:          150,
			IdentitySource: "normalized",
			Offense: map[string]float64{
				"third_down_conversion_percentage": 1.0,
				"yards_per_game":                   0.9,
				"fourth_downs_per_game":            -1.0,
				"passing_touchdowns_per_game":      1.1,
				"average_team_passer_rating":       1.5,
				"interceptions_thrown_per_game":    -1.8,
				"qb_sacked_per_game":               -0.6,
				"rushing_touchdowns_per_game":      0.5,
				"rushing_yards_per_game":           1.0,
				"rushing_first_downs_per_game":     0.7,
				"rushing_touchdowns_per_game_run":  1.3,
				"passing_touchdowns_per_game_run":  0.5,
			},
			Defense: map[string]float64{
				"qb_sacked_per_game":                           0.95,
				"opponent_interceptions_thrown_per_game":       1.3,
				"opponent_fumbles_per_game":                    1.0,
				"takeaways_bonus":                              0.5,
				"opponent_touchdowns_per_game":                 -1.6,
				"opponent_yards_per_game":                      -1.1,
				"opponent_red_zone_scoring_percentage_td_only": -1.4,
				"opponent_fourth_downs_per_game":               0.6,
			},
		},
	}
}

// Path resolves name against DataDir unless it is already absolute.
func (c *Config) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	}
	switch c.ProjectionStore {
	case StoreCSV, StoreSQLite:
	default:
		return fmt.Errorf("%w: projection_store must be %q or %q, got %q", ErrInvalidConfig, StoreCSV, StoreSQLite, c.ProjectionStore)
	}
	if c.DedupeMaxSize < 0 {
		return fmt.Errorf("%w: dedupe_max_size must not be negative, got %d", ErrInvalidConfig, c.DedupeMaxSize)
	}
	for i := 1; i < len(c.MetricsDeltaBuckets); i++ {
		if c.MetricsDeltaBuckets[i] <= c.MetricsDeltaBuckets[i-1] {
			return fmt.Errorf("%w: metrics_delta_buckets must be increasing", ErrInvalidConfig)
		}
	}
	r := c.Rating
	if r.LogisticScale <= 0 || r.LogitClamp <= 0 || r.MarginPointsPerScore <= 0 {
		return fmt.Errorf("%w: rating scales must be positive", ErrInvalidConfig)
	}
	if r.SwingCap <= 0 || r.SurpriseCap <= 0 || r.MarginCap < 1 {
		return fmt.Errorf("%w: rating caps out of range", ErrInvalidConfig)
	}
	if r.RegressionWeight < 0 || r.RegressionWeight > 1 {
		return fmt.Errorf("%w: regression_weight must be within [0,1], got %v", ErrInvalidConfig, r.RegressionWeight)
	}
	for k := range r.StepSizes {
		if _, err := strconv.Atoi(k); err != nil {
			return fmt.Errorf("%w: step_sizes key %q is not a sub-period number", ErrInvalidConfig, k)
		}
	}
	cc := c.Composite
	if cc.Scale <= 0 {
		return fmt.Errorf("%w: composite scale must be positive", ErrInvalidConfig)
	}
	if cc.RunBias >= cc.PassBias {
		return fmt.Errorf("%w: run_bias (%v) must be below pass_bias (%v)", ErrInvalidConfig, cc.RunBias, cc.PassBias)
	}
	switch cc.IdentitySource {
	case "normalized", "raw":
	default:
		return fmt.Errorf("%w: identity_source must be normalized or raw, got %q", ErrInvalidConfig, cc.IdentitySource)
	}
	return nil
}

// StepSizeOverrides converts the string-keyed step size table.
func (r RatingConfig) StepSizeOverrides() (map[int]float64, error) {
	out := make(map[int]float64, len(r.StepSizes))
	for k, v := range r.StepSizes {
		n, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("%w: step_sizes key %q: %w", ErrInvalidConfig, k, err)
		}
		out[n] = v
	}
	return out, nil
}
