// Package metrics provides Prometheus metrics for the gridelo rating engine.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Component labels used by the error counters.
const (
	ComponentHistory    = "history"
	ComponentComposite  = "composite"
	ComponentProjection = "projection"
	ComponentRepository = "repository"
)

// deltaBuckets covers the rating-change range up to the swing cap.
var deltaBuckets = []float64{1, 2.5, 5, 10, 15, 20, 25, 30, 40, 50} //nolint:gochecknoglobals // bucket layout

// Manager manages all Prometheus metrics for the rating engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Rating engine
	gamesProcessed   prometheus.Counter
	probabilityClamp prometheus.Counter
	swingCaps        prometheus.Counter
	regressions      prometheus.Counter
	ratingDelta      prometheus.Histogram
	competitors      prometheus.Gauge

	// Composite engine
	compositeScored    prometheus.Counter
	degenerateFeatures *prometheus.CounterVec

	// Projection workflow
	predictions      prometheus.Counter
	resultsApplied   prometheus.Counter
	duplicateUpdates prometheus.Counter

	// Error accounting
	validationErrors *prometheus.CounterVec
	lookupMisses     *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry *prometheus.Registry //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Configure()
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. Values recorded before the call are dropped.
func Configure(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gridelo",
		subsystem:        "engine",
		histogramBuckets: deltaBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.gamesProcessed = m.counter("games_processed_total", "Total number of matches applied to the rating table")
	m.probabilityClamp = m.counter("probability_clamps_total", "Win probabilities whose logit difference exceeded the clamp bound")
	m.swingCaps = m.counter("swing_caps_total", "Rating changes limited by the per-match swing cap")
	m.regressions = m.counter("regressions_total", "End-of-period regressions applied (one per competitor)")
	m.ratingDelta = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rating_delta_abs",
		Help:        "Absolute rating change applied per match",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	})
	m.competitors = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "competitors_tracked",
		Help:        "Number of competitors in the rating table",
		ConstLabels: m.customLabels,
	})

	m.compositeScored = m.counter("composite_scored_total", "Competitors scored by the composite engine")
	m.degenerateFeatures = m.counterVec("composite_degenerate_features_total", "Statistical features with zero variance", "feature")

	m.predictions = m.counter("predictions_total", "Prediction rows written to the active projection")
	m.resultsApplied = m.counter("results_applied_total", "Completed results applied to the active projection")
	m.duplicateUpdates = m.counter("duplicate_updates_total", "Result completions skipped because the row was already completed")

	m.validationErrors = m.counterVec("validation_errors_total", "Records rejected by input validation", "component")
	m.lookupMisses = m.counterVec("lookup_misses_total", "Matchups skipped because a required row was missing", "component")
}

// Registry returns the registry backing the global manager.
func Registry() *prometheus.Registry { return customRegistry }

// WriteTextfile writes the current state of the global registry to path in
// the Prometheus text exposition format.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// RecordGameProcessed records one applied match and its absolute delta.
func (m *Manager) RecordGameProcessed(absDelta float64) {
	if !m.enabled {
		return
	}
	m.gamesProcessed.Inc()
	m.ratingDelta.Observe(absDelta)
}

// RecordProbabilityClamp records a clamped win probability.
func (m *Manager) RecordProbabilityClamp() {
	if m.enabled {
		m.probabilityClamp.Inc()
	}
}

// RecordSwingCap records a capped rating change.
func (m *Manager) RecordSwingCap() {
	if m.enabled {
		m.swingCaps.Inc()
	}
}

// RecordRegression records one regressed competitor.
func (m *Manager) RecordRegression() {
	if m.enabled {
		m.regressions.Inc()
	}
}

// UpdateCompetitors sets the tracked competitor gauge.
func (m *Manager) UpdateCompetitors(n int) {
	if m.enabled {
		m.competitors.Set(float64(n))
	}
}

// RecordCompositeScored records n scored competitors.
func (m *Manager) RecordCompositeScored(n int) {
	if m.enabled {
		m.compositeScored.Add(float64(n))
	}
}

// RecordDegenerateFeature records a zero-variance feature.
func (m *Manager) RecordDegenerateFeature(feature string) {
	if m.enabled {
		m.degenerateFeatures.WithLabelValues(feature).Inc()
	}
}

// RecordPrediction records n written prediction rows.
func (m *Manager) RecordPrediction(n int) {
	if m.enabled {
		m.predictions.Add(float64(n))
	}
}

// RecordResultApplied records a completed projection result.
func (m *Manager) RecordResultApplied() {
	if m.enabled {
		m.resultsApplied.Inc()
	}
}

// RecordDuplicateUpdate records a skipped duplicate completion.
func (m *Manager) RecordDuplicateUpdate() {
	if m.enabled {
		m.duplicateUpdates.Inc()
	}
}

// RecordValidationError records a rejected record for component.
func (m *Manager) RecordValidationError(component string) {
	if m.enabled {
		m.validationErrors.WithLabelValues(component).Inc()
	}
}

// RecordLookupMiss records a skipped matchup for component.
func (m *Manager) RecordLookupMiss(component string) {
	if m.enabled {
		m.lookupMisses.WithLabelValues(component).Inc()
	}
}

// Package-level helpers operating on the global manager.

func RecordGameProcessed(absDelta float64)     { globalManager.RecordGameProcessed(absDelta) }
func RecordProbabilityClamp()                  { globalManager.RecordProbabilityClamp() }
func RecordSwingCap()                          { globalManager.RecordSwingCap() }
func RecordRegression()                        { globalManager.RecordRegression() }
func UpdateCompetitors(n int)                  { globalManager.UpdateCompetitors(n) }
func RecordCompositeScored(n int)              { globalManager.RecordCompositeScored(n) }
func RecordDegenerateFeature(feature string)   { globalManager.RecordDegenerateFeature(feature) }
func RecordPrediction(n int)                   { globalManager.RecordPrediction(n) }
func RecordResultApplied()                     { globalManager.RecordResultApplied() }
func RecordDuplicateUpdate()                   { globalManager.RecordDuplicateUpdate() }
func RecordValidationError(component string)   { globalManager.RecordValidationError(component) }
func RecordLookupMiss(component string)        { globalManager.RecordLookupMiss(component) }
