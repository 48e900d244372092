package rating_test

import (
	"context"
	"math"
	"testing"

	"github.com/okian/gridelo/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedWin(t *testing.T) {
	p := rating.DefaultParams()

	t.Run("home advantage favours the home side", func(t *testing.T) {
		home := p.ExpectedWin(1500, 1500, true)
		away := p.ExpectedWin(1500, 1500, false)
		assert.InDelta(t, 0.5924662305843318, home.P, 1e-12)
		assert.InDelta(t, 1, home.P+away.P, 1e-12)
		assert.InDelta(t, -0.1625, home.RawDiff, 1e-12)
		assert.False(t, home.Clamped)
	})

	t.Run("logit beyond the bound matches the bound", func(t *testing.T) {
		atBound := p.ExpectedWin(1500, 5565, true) // raw diff exactly +10
		beyond := p.ExpectedWin(1500, 7565, true)  // raw diff +15
		require.False(t, atBound.Clamped)
		require.True(t, beyond.Clamped)
		assert.Equal(t, atBound.P, beyond.P)
		assert.InDelta(t, 15, beyond.RawDiff, 1e-12)

		atLow := p.ExpectedWin(5565, 1500, false)    // raw diff exactly -10
		belowLow := p.ExpectedWin(7565, 1500, false) // raw diff -15
		assert.False(t, atLow.Clamped)
		assert.True(t, belowLow.Clamped)
		assert.Equal(t, atLow.P, belowLow.P)
	})

	t.Run("probability stays strictly inside (0,1)", func(t *testing.T) {
		lo := p.ExpectedWin(0, 1e9, false)
		hi := p.ExpectedWin(1e9, 0, true)
		assert.Greater(t, lo.P, 0.0)
		assert.Less(t, hi.P, 1.0)
	})
}

func TestMarginMultiplier(t *testing.T) {
	p := rating.DefaultParams()
	cases := []struct {
		diff float64
		want float64
	}{
		{0, 1.0},
		{3, 1.0},
		{7, 1.0},
		{14, 1.3},
		{24, 1 + 0.3*(24.0/7-1)},
		{100, 1.75},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, p.MarginMultiplier(c.diff), 1e-12, "diff=%v", c.diff)
	}
	assert.Equal(t, p.MarginMultiplier(-24), p.MarginMultiplier(24))
}

func TestSurpriseMultiplier(t *testing.T) {
	p := rating.DefaultParams()
	// The defaults saturate for every probability.
	for _, prob := range []float64{0.01, 0.25, 0.5, 0.59, 0.99} {
		assert.Equal(t, 3.0, p.SurpriseMultiplier(prob))
	}

	p.SurpriseNumerator = 0.5
	assert.InDelta(t, 0.5/(0.001+0.25), p.SurpriseMultiplier(0.5), 1e-12)
	assert.Greater(t, p.SurpriseMultiplier(0.9), p.SurpriseMultiplier(0.5))
}

func TestCapSwing(t *testing.T) {
	p := rating.DefaultParams()
	v, capped := p.CapSwing(49.9)
	assert.Equal(t, 49.9, v)
	assert.False(t, capped)
	v, capped = p.CapSwing(120)
	assert.Equal(t, 50.0, v)
	assert.True(t, capped)
	v, capped = p.CapSwing(-80)
	assert.Equal(t, -50.0, v)
	assert.True(t, capped)
}

func TestStepSize(t *testing.T) {
	p := rating.DefaultParams()
	want := map[int]float64{0: 20, 1: 20, 18: 20, 19: 25, 20: 30, 21: 30, 22: 40, 23: 20}
	for sub, k := range want {
		assert.Equal(t, k, p.StepSize(sub), "sub-period %d", sub)
	}
}

func TestStep(t *testing.T) {
	Convey("Given default parameters", t, func() {
		p := rating.DefaultParams()

		Convey("When equal teams meet and the home side wins 24-17", func() {
			res := p.Step(rating.StepInput{Self: 1500, Opponent: 1500, SelfScore: 24, OppScore: 17, SelfHome: true, StepSize: 20})

			Convey("Then the home side gains about 24.45 points and the away side loses the same", func() {
				So(res.Probability.P, ShouldAlmostEqual, 0.5924662305843318, 1e-12)
				So(res.Margin, ShouldEqual, 1.0)
				So(res.Surprise, ShouldEqual, 3.0)
				So(res.Capped, ShouldBeFalse)
				So(res.SelfAfter, ShouldAlmostEqual, 1524.452026164940, 1e-9)
				So(res.OpponentAfter, ShouldAlmostEqual, 1475.547973835060, 1e-9)
				So(res.SelfAfter+res.OpponentAfter, ShouldAlmostEqual, 3000.0, 1e-9)
			})
		})

		Convey("When a 700-point underdog wins at home by 45", func() {
			res := p.Step(rating.StepInput{Self: 1500, Opponent: 2200, SelfScore: 45, OppScore: 0, SelfHome: true, StepSize: 20})

			Convey("Then the change is capped at exactly 50", func() {
				So(res.RawDelta, ShouldBeGreaterThan, 100.0)
				So(res.Capped, ShouldBeTrue)
				So(res.Delta, ShouldEqual, 50.0)
				So(res.SelfAfter, ShouldEqual, 1550.0)
				So(res.OpponentAfter, ShouldEqual, 2150.0)
			})
		})

		Convey("When the game is tied", func() {
			res := p.Step(rating.StepInput{Self: 1500, Opponent: 1500, SelfScore: 20, OppScore: 20, SelfHome: true, StepSize: 20})

			Convey("Then the home favourite loses ground", func() {
				So(res.Delta, ShouldBeLessThan, 0.0)
				So(res.Delta, ShouldAlmostEqual, 20*3*(0.5-res.Probability.P), 1e-12)
			})
		})

		Convey("When many matches are chained", func() {
			a, b := 1500.0, 1500.0
			scores := [][2]int{{31, 3}, {10, 13}, {27, 27}, {7, 42}, {17, 16}}
			for i, s := range scores {
				before := a + b
				res := p.Step(rating.StepInput{Self: a, Opponent: b, SelfScore: s[0], OppScore: s[1], SelfHome: i%2 == 0, StepSize: p.StepSize(i + 18)})
				So(res.SelfAfter-a, ShouldAlmostEqual, -(res.OpponentAfter - b), 1e-9)
				a, b = res.SelfAfter, res.OpponentAfter
				So(math.Abs(a+b-before), ShouldBeLessThan, 1e-9)
			}
		})
	})
}

func TestRegress(t *testing.T) {
	p := rating.DefaultParams()
	assert.Equal(t, 1500.0, p.Regress(1500))
	assert.Equal(t, 1650.0, p.Regress(1700))
	assert.Equal(t, 1350.0, p.Regress(1300))
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, rating.DefaultParams().Validate())

	bad := rating.DefaultParams()
	bad.LogisticScale = 0
	assert.ErrorIs(t, bad.Validate(), rating.ErrInvalidParams)

	bad = rating.DefaultParams()
	bad.RegressionWeight = 1.5
	assert.ErrorIs(t, bad.Validate(), rating.ErrInvalidParams)

	bad = rating.DefaultParams()
	bad.StepSizes = map[int]float64{19: -1}
	assert.ErrorIs(t, bad.Validate(), rating.ErrInvalidParams)

	bad = rating.DefaultParams()
	bad.HomeAdvantage = math.NaN()
	assert.ErrorIs(t, bad.Validate(), rating.ErrInvalidParams)
}

func TestObservers(t *testing.T) {
	Convey("Given a recorder behind a multi observer", t, func() {
		rec := &rating.Recorder{}
		var calls int
		obs := rating.MultiObserver{rec, nil, rating.ObserverFunc(func(context.Context, rating.Event) { calls++ })}

		obs.Observe(context.Background(), rating.Event{Kind: rating.KindClamp, Raw: 15, Value: 10})
		obs.Observe(context.Background(), rating.Event{Kind: rating.KindCap})
		rating.Nop.Observe(context.Background(), rating.Event{Kind: rating.KindCap})

		Convey("Then every event reaches every observer in order", func() {
			So(calls, ShouldEqual, 2)
			evs := rec.Events()
			So(len(evs), ShouldEqual, 2)
			So(evs[0].Kind, ShouldEqual, rating.KindClamp)
			So(rec.Count(rating.KindCap), ShouldEqual, 1)
		})
	})
}
