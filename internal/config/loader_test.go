package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/gridelo/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"GRIDELO_CONFIG",
	"GRIDELO_LOG_LEVEL",
	"GRIDELO_DATA_DIR",
	"GRIDELO_SEASON",
	"GRIDELO_PROJECTION_STORE",
	"GRIDELO_RATING__HOME_ADVANTAGE",
	"GRIDELO_COMPOSITE__PASS_BIAS",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gridelo.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then the calibrated constants are in place", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Rating.InitialRating, convey.ShouldEqual, 1500)
				convey.So(cfg.Rating.HomeAdvantage, convey.ShouldEqual, 65)
				convey.So(cfg.Rating.SwingCap, convey.ShouldEqual, 50)
				convey.So(cfg.Rating.StepSizes["22"], convey.ShouldEqual, 40)
				convey.So(cfg.Composite.Scale, convey.ShouldEqual, 150)
				convey.So(cfg.Composite.Offense["interceptions_thrown_per_game"], convey.ShouldEqual, -1.8)
				convey.So(cfg.ProjectionStore, convey.ShouldEqual, config.StoreCSV)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GRIDELO_DATA_DIR", "/tmp/gridelo")
			_ = os.Setenv("GRIDELO_SEASON", "2026")
			_ = os.Setenv("GRIDELO_RATING__HOME_ADVANTAGE", "48")

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then env overrides defaults, including nested sections", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DataDir, convey.ShouldEqual, "/tmp/gridelo")
				convey.So(cfg.Season, convey.ShouldEqual, 2026)
				convey.So(cfg.Rating.HomeAdvantage, convey.ShouldEqual, 48)
				convey.So(cfg.Rating.LogisticScale, convey.ShouldEqual, 400)
				convey.So(cfg.Path("matches.csv"), convey.ShouldEqual, "/tmp/gridelo/matches.csv")
			})
		})

		convey.Convey("When loading config with a YAML file and env on top", func() {
			path := writeConfigFile(t, `
data_dir: /srv/gridelo
projection_store: sqlite
rating:
  swing_cap: 60
  step_sizes:
    "22": 45
composite:
  run_bias: 0.7
`)
			_ = os.Setenv("GRIDELO_DATA_DIR", "/override")

			cfg, err := config.Load(ctx, path)

			convey.Convey("Then file values apply and env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DataDir, convey.ShouldEqual, "/override")
				convey.So(cfg.ProjectionStore, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.Rating.SwingCap, convey.ShouldEqual, 60)
				convey.So(cfg.Rating.StepSizes["22"], convey.ShouldEqual, 45)
				convey.So(cfg.Composite.RunBias, convey.ShouldEqual, 0.7)
				convey.So(cfg.Composite.PassBias, convey.ShouldEqual, 1.2)
			})
		})

		convey.Convey("When the file path comes from GRIDELO_CONFIG", func() {
			path := writeConfigFile(t, "season: 2030\n")
			_ = os.Setenv("GRIDELO_CONFIG", path)

			cfg, err := config.Load(ctx, "")

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Season, convey.ShouldEqual, 2030)
		})

		convey.Convey("When loading an invalid YAML file", func() {
			path := writeConfigFile(t, `invalid: yaml: content: [`)

			cfg, err := config.Load(ctx, path)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading a non-existent file", func() {
			cfg, err := config.Load(ctx, "/non/existent/file.yaml")

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When the values fail validation", func() {
			_ = os.Setenv("GRIDELO_PROJECTION_STORE", "parquet")

			cfg, err := config.Load(ctx, "")

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When the identity thresholds are inverted", func() {
			_ = os.Setenv("GRIDELO_COMPOSITE__PASS_BIAS", "0.5")

			_, err := config.Load(ctx, "")

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
