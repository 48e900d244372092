package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCounters(t *testing.T) {
	Convey("Given a manager on an isolated registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(
			WithPrometheusRegistry(registry),
			WithNamespace("test"),
			WithSubsystem("rating"),
			WithCustomLabels(map[string]string{"env": "test"}),
		)

		Convey("When games, clamps and caps are recorded", func() {
			m.RecordGameProcessed(24.6)
			m.RecordGameProcessed(50)
			m.RecordProbabilityClamp()
			m.RecordSwingCap()

			Convey("Then the counters reflect them", func() {
				So(testutil.ToFloat64(m.gamesProcessed), ShouldEqual, 2)
				So(testutil.ToFloat64(m.probabilityClamp), ShouldEqual, 1)
				So(testutil.ToFloat64(m.swingCaps), ShouldEqual, 1)
				So(testutil.CollectAndCount(m.ratingDelta), ShouldEqual, 1)
			})
		})

		Convey("When labelled errors are recorded", func() {
			m.RecordValidationError(ComponentHistory)
			m.RecordValidationError(ComponentHistory)
			m.RecordLookupMiss(ComponentProjection)
			m.RecordDegenerateFeature("yards_per_game")

			Convey("Then each label carries its own count", func() {
				So(testutil.ToFloat64(m.validationErrors.WithLabelValues(ComponentHistory)), ShouldEqual, 2)
				So(testutil.ToFloat64(m.lookupMisses.WithLabelValues(ComponentProjection)), ShouldEqual, 1)
				So(testutil.ToFloat64(m.degenerateFeatures.WithLabelValues("yards_per_game")), ShouldEqual, 1)
			})
		})

		Convey("When the manager is disabled", func() {
			off := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))
			off.RecordDuplicateUpdate()
			off.UpdateCompetitors(32)

			Convey("Then nothing is recorded", func() {
				So(testutil.ToFloat64(off.duplicateUpdates), ShouldEqual, 0)
				So(testutil.ToFloat64(off.competitors), ShouldEqual, 0)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given the global registry", t, func() {
		RecordRegression()
		UpdateCompetitors(32)
		path := filepath.Join(t.TempDir(), "gridelo.prom")

		Convey("When it is written to a textfile", func() {
			err := WriteTextfile(path)

			Convey("Then the file holds the exposition format", func() {
				So(err, ShouldBeNil)
				raw, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(strings.Contains(string(raw), "gridelo_engine_regressions_total"), ShouldBeTrue)
				So(strings.Contains(string(raw), "gridelo_engine_competitors_tracked 32"), ShouldBeTrue)
			})
		})

		Convey("When no path is configured", func() {
			So(WriteTextfile(""), ShouldBeNil)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the global registry rebuilt with labels and buckets", t, func() {
		Configure(WithCustomLabels(map[string]string{"league": "nfl"}), WithHistogramBuckets([]float64{5, 10}))
		Reset(func() { Configure() })
		RecordGameProcessed(7)

		Convey("When it is written to a textfile", func() {
			path := filepath.Join(t.TempDir(), "gridelo.prom")
			So(WriteTextfile(path), ShouldBeNil)
			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)

			Convey("Then every series carries the label and the delta uses the buckets", func() {
				So(string(raw), ShouldContainSubstring, `league="nfl"`)
				So(string(raw), ShouldContainSubstring, `le="5"`)
				So(string(raw), ShouldContainSubstring, `le="10"`)
				So(string(raw), ShouldNotContainSubstring, `le="25"`)
			})
		})
	})
}
