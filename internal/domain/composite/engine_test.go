package composite_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/gridelo/internal/domain/composite"
	"github.com/okian/gridelo/internal/domain/model"
	"github.com/okian/gridelo/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTables gives every feature the values in def unless overridden.
func buildTables(teams []string, def []float64, overrides map[string][]float64) composite.Tables {
	t := composite.Tables{}
	for _, f := range composite.AllFeatures() {
		vals := def
		if o, ok := overrides[f]; ok {
			vals = o
		}
		rows := make([]composite.Cell, len(teams))
		for i, name := range teams {
			rows[i] = composite.Cell{Competitor: name, Value: vals[i]}
		}
		t[f] = rows
	}
	return t
}

func newEngine(opts ...composite.Option) *composite.Engine {
	e, err := composite.New(opts...)
	So(err, ShouldBeNil)
	return e
}

func TestComputeTwoCompetitors(t *testing.T) {
	Convey("Given two competitors where one leads every feature", t, func() {
		rec := &rating.Recorder{}
		e := newEngine(composite.WithObserver(rec))
		tables := buildTables([]string{"X", "Y"}, []float64{10, 5}, nil)

		res, err := e.Compute(context.Background(), tables)
		So(err, ShouldBeNil)
		So(len(res.Scores), ShouldEqual, 2)

		Convey("Then every z-score is ±1 and the sub-scores follow the weights", func() {
			x := res.Scores[0]
			So(x.Competitor, ShouldEqual, "X")
			So(x.Offense, ShouldAlmostEqual, 2.1, 1e-9)
			So(x.Disruption, ShouldAlmostEqual, 3.75, 1e-9)
			So(x.Resilience, ShouldAlmostEqual, -3.5, 1e-9)
			So(x.Defense, ShouldAlmostEqual, 0.25, 1e-9)
			So(x.Total, ShouldAlmostEqual, 2.35, 1e-9)

			y := res.Scores[1]
			So(y.Total, ShouldAlmostEqual, -2.35, 1e-9)
		})

		Convey("Then a zero identity denominator is balanced and reported", func() {
			So(res.Identities["X"], ShouldEqual, composite.IdentityBalanced)
			So(res.Identities["Y"], ShouldEqual, composite.IdentityBalanced)
			So(rec.Count(rating.KindZeroIdentity), ShouldEqual, 1)
		})

		Convey("Then re-running yields identical scores", func() {
			again, err := e.Compute(context.Background(), tables)
			So(err, ShouldBeNil)
			So(again.Scores, ShouldResemble, res.Scores)
		})
	})
}

func TestComputeIdentity(t *testing.T) {
	teams := []string{"P", "R", "B"}
	overrides := map[string][]float64{
		composite.PassingTDPerGame:    {3, 2, 1},
		composite.RushingYardsPerGame: {120, 130, 110},
	}

	Convey("Given normalised identity indicators", t, func() {
		e := newEngine()
		res, err := e.Compute(context.Background(), buildTables(teams, []float64{1, 2, 3}, overrides))
		So(err, ShouldBeNil)

		Convey("Then each competitor gets its play style", func() {
			So(res.Identities["P"], ShouldEqual, composite.IdentityPass)
			So(res.Identities["R"], ShouldEqual, composite.IdentityRun)
			So(res.Identities["B"], ShouldEqual, composite.IdentityBalanced)
		})

		Convey("Then offense plus defense is the total", func() {
			for _, s := range res.Scores {
				So(s.Total, ShouldAlmostEqual, s.Offense+s.Disruption+s.Resilience, 1e-12)
			}
		})
	})

	Convey("Given raw identity indicators", t, func() {
		p := composite.DefaultParams()
		p.IdentitySource = composite.IdentityRaw
		e := newEngine(composite.WithParams(p))
		res, err := e.Compute(context.Background(), buildTables(teams, []float64{1, 2, 3}, overrides))
		So(err, ShouldBeNil)

		Convey("Then large rushing totals push everyone to run-leaning", func() {
			for _, name := range teams {
				So(res.Identities[name], ShouldEqual, composite.IdentityRun)
			}
		})
	})
}

func TestComputeFailures(t *testing.T) {
	teams := []string{"A", "B", "C"}

	Convey("Given a feature with no spread", t, func() {
		rec := &rating.Recorder{}
		e := newEngine(composite.WithObserver(rec))
		tables := buildTables(teams, []float64{1, 2, 3}, map[string][]float64{composite.OppFumbles: {4, 4, 4}})
		_, err := e.Compute(context.Background(), tables)

		Convey("Then the degenerate feature is reported instead of NaN", func() {
			So(errors.Is(err, composite.ErrDegenerateFeature), ShouldBeTrue)
			var ferr *composite.FeatureError
			So(errors.As(err, &ferr), ShouldBeTrue)
			So(ferr.Feature, ShouldEqual, composite.OppFumbles)
			So(rec.Count(rating.KindDegenerate), ShouldEqual, 1)
		})
	})

	Convey("Given a missing feature table", t, func() {
		tables := buildTables(teams, []float64{1, 2, 3}, nil)
		delete(tables, composite.YardsPerGame)
		_, err := newEngine().Compute(context.Background(), tables)

		Convey("Then it is a validation failure", func() {
			So(errors.Is(err, composite.ErrMissingFeature), ShouldBeTrue)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})
	})

	Convey("Given a competitor absent from one table", t, func() {
		tables := buildTables([]string{"A", "B", "C", "D"}, []float64{1, 2, 3, 4}, nil)
		tables[composite.OppYardsPerGame] = tables[composite.OppYardsPerGame][:3]

		Convey("When partial failures are off", func() {
			_, err := newEngine().Compute(context.Background(), tables)

			Convey("Then the competitor is named in the error", func() {
				var ferr *composite.FeatureError
				So(errors.As(err, &ferr), ShouldBeTrue)
				So(ferr.Competitor, ShouldEqual, "D")
				So(ferr.Feature, ShouldEqual, composite.OppYardsPerGame)
			})
		})

		Convey("When partial failures are on", func() {
			res, err := newEngine(composite.WithPartialFailures(true)).Compute(context.Background(), tables)

			Convey("Then the rest are scored", func() {
				So(err, ShouldBeNil)
				So(len(res.Failures), ShouldEqual, 1)
				So(len(res.Scores), ShouldEqual, 3)
				for _, s := range res.Scores {
					So(s.Competitor, ShouldNotEqual, "D")
				}
			})
		})
	})
}

func TestZScores(t *testing.T) {
	z, ok := composite.ZScores([]float64{1, 2, 3, 4})
	require.True(t, ok)
	assert.InDelta(t, -1.5/math.Sqrt(1.25), z[0], 1e-12)
	assert.InDelta(t, 1.5/math.Sqrt(1.25), z[3], 1e-12)

	_, ok = composite.ZScores([]float64{7, 7})
	assert.False(t, ok)
	_, ok = composite.ZScores(nil)
	assert.False(t, ok)
}

func TestWeightsFromMaps(t *testing.T) {
	w, err := composite.WeightsFromMaps(
		map[string]float64{composite.YardsPerGame: 2, composite.RushingTDRunKey: 1.5},
		map[string]float64{composite.TakeawaysBonusKey: 0},
	)
	require.NoError(t, err)
	assert.Equal(t, 2.0, w.Yards)
	assert.Equal(t, 1.5, w.RushTDRun)
	assert.Equal(t, 0.0, w.TakeawaysBonus)
	assert.Equal(t, composite.DefaultWeights().PasserRating, w.PasserRating)

	_, err = composite.WeightsFromMaps(map[string]float64{"points_per_game": 1}, nil)
	assert.ErrorIs(t, err, composite.ErrInvalidParams)
}

func TestParamsValidate(t *testing.T) {
	p := composite.DefaultParams()
	require.NoError(t, p.Validate())
	p.RunBias = 1.5
	assert.ErrorIs(t, p.Validate(), composite.ErrInvalidParams)
	p = composite.DefaultParams()
	p.IdentitySource = "vibes"
	_, err := composite.New(composite.WithParams(p))
	assert.ErrorIs(t, err, composite.ErrInvalidParams)
}
