package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepSizeOverrides(t *testing.T) {
	cfg := New(context.Background())

	got, err := cfg.Rating.StepSizeOverrides()
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{19: 25, 20: 30, 21: 30, 22: 40}, got)

	cfg.Rating.StepSizes["wildcard"] = 25
	_, err = cfg.Rating.StepSizeOverrides()
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfig))
}

func TestPathResolution(t *testing.T) {
	cfg := New(context.Background())
	cfg.DataDir = "/data"

	assert.Equal(t, "/data/history.csv", cfg.Path("history.csv"))
	assert.Equal(t, "/abs/history.csv", cfg.Path("/abs/history.csv"))
	assert.Equal(t, "", cfg.Path(""))
}

func TestValidateRanges(t *testing.T) {
	cases := map[string]func(*Config){
		"empty data dir":         func(c *Config) { c.DataDir = "" },
		"regression above one":   func(c *Config) { c.Rating.RegressionWeight = 1.5 },
		"zero logistic scale":    func(c *Config) { c.Rating.LogisticScale = 0 },
		"margin cap below one":   func(c *Config) { c.Rating.MarginCap = 0.5 },
		"unknown identity":       func(c *Config) { c.Composite.IdentitySource = "attempts" },
		"zero composite scale":   func(c *Config) { c.Composite.Scale = 0 },
		"negative dedupe bound":  func(c *Config) { c.DedupeMaxSize = -1 },
		"unordered delta bucket": func(c *Config) { c.MetricsDeltaBuckets = []float64{5, 5} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := New(context.Background())
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
	require.NoError(t, New(context.Background()).Validate())
}
