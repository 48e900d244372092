package edge_test

import (
	"math"
	"testing"

	"github.com/okian/gridelo/internal/domain/edge"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFusion(t *testing.T) {
	Convey("Given the default composite scale", t, func() {
		f, err := edge.New(0)
		So(err, ShouldBeNil)

		Convey("Equal composite scores are a coin flip", func() {
			So(f.CompositeWinProbability(3.2, 3.2), ShouldEqual, 0.5)
		})

		Convey("A 150-point lead is ten-to-one", func() {
			So(f.CompositeWinProbability(150, 0), ShouldAlmostEqual, 10.0/11.0, 1e-12)
			So(f.CompositeWinProbability(0, 150), ShouldAlmostEqual, 1.0/11.0, 1e-12)
		})

		Convey("Fusing a matchup averages the two edges", func() {
			m := f.Fuse(0.6, 4, -2)
			cp := 1 / (1 + math.Pow(10, -6.0/150))
			So(m.Home.CompositeProbability, ShouldAlmostEqual, cp, 1e-12)
			So(m.Home.RatingEdge, ShouldAlmostEqual, 0.1, 1e-12)
			So(m.Home.CompositeEdge, ShouldAlmostEqual, cp-0.5, 1e-12)
			So(m.Home.TotalEdge, ShouldAlmostEqual, (0.1+cp-0.5)/2, 1e-12)

			Convey("And the away side is the exact negation", func() {
				So(m.Away.RatingEdge, ShouldEqual, -m.Home.RatingEdge)
				So(m.Away.CompositeEdge, ShouldEqual, -m.Home.CompositeEdge)
				So(m.Away.TotalEdge, ShouldEqual, -m.Home.TotalEdge)
				So(m.Away.RatingProbability, ShouldAlmostEqual, 0.4, 1e-12)
			})
		})
	})

	Convey("Given an invalid scale", t, func() {
		_, err := edge.New(-1)
		So(err, ShouldEqual, edge.ErrInvalidScale)
	})
}
