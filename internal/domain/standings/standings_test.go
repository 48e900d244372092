package standings_test

import (
	"testing"

	"github.com/okian/gridelo/internal/domain/history"
	"github.com/okian/gridelo/internal/domain/model"
	"github.com/okian/gridelo/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRank(t *testing.T) {
	Convey("Given unordered ratings with a tie", t, func() {
		rows := []history.Standing{
			{Competitor: "Chicago Bears", Rating: 1480},
			{Competitor: "Detroit Lions", Rating: 1620},
			{Competitor: "Buffalo Bills", Rating: 1620},
			{Competitor: "Miami Dolphins", Rating: 1500},
		}

		got := standings.Rank(rows)

		Convey("Then they are ordered by rating then name with shared ranks", func() {
			So(got, ShouldResemble, []standings.Entry{
				{Rank: 1, Competitor: "Buffalo Bills", Rating: 1620},
				{Rank: 1, Competitor: "Detroit Lions", Rating: 1620},
				{Rank: 3, Competitor: "Miami Dolphins", Rating: 1500},
				{Rank: 4, Competitor: "Chicago Bears", Rating: 1480},
			})
			So(rows[0].Competitor, ShouldEqual, "Chicago Bears")
		})
	})
}

func TestFromProjections(t *testing.T) {
	Convey("Given projection rows across sub-periods", t, func() {
		rows := []model.Projection{
			{Period: 2025, SubPeriod: 2, Competitor: "A", RatingBefore: 1510, Type: model.ProjectionPrediction},
			{Period: 2025, SubPeriod: 0, Competitor: "A", RatingBefore: 1500, Type: model.ProjectionRegressionStart},
			{Period: 2025, SubPeriod: 1, Competitor: "A", RatingBefore: 1500, RatingAfter: model.Some(1510), Type: model.ProjectionGame},
			{Period: 2025, SubPeriod: 1, Competitor: "B", RatingBefore: 1500, RatingAfter: model.Some(1490), Type: model.ProjectionGame},
		}

		got := standings.FromProjections(rows)

		Convey("Then the latest row wins, preferring rating-after", func() {
			So(got, ShouldResemble, []history.Standing{
				{Competitor: "A", Rating: 1510},
				{Competitor: "B", Rating: 1490},
			})
		})
	})
}

func TestFromHistory(t *testing.T) {
	Convey("Given history records", t, func() {
		recs := []model.HistoryRecord{
			{Competitor: "A", RatingAfter: 1520},
			{Competitor: "B", RatingAfter: 1480},
			{Competitor: "A", RatingAfter: 1515},
		}
		So(standings.FromHistory(recs), ShouldResemble, []history.Standing{
			{Competitor: "A", Rating: 1515},
			{Competitor: "B", Rating: 1480},
		})
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given two games and a regression in one period", t, func() {
		recs := []model.HistoryRecord{
			{ID: "g1", Period: 2024, Competitor: "A", RatingAfter: 1520, WinProbability: model.Some(0.6), Type: model.EventGame},
			{ID: "g1", Period: 2024, Competitor: "B", RatingAfter: 1480, WinProbability: model.Some(0.4), Type: model.EventGame},
			{ID: "g2", Period: 2024, Competitor: "B", RatingAfter: 1500, WinProbability: model.Some(0.5), Type: model.EventGame},
			{ID: "g2", Period: 2024, Competitor: "A", RatingAfter: 1500, WinProbability: model.Some(0.5), Type: model.EventGame},
			{ID: "2024-regression", Period: 2024, Competitor: "A", RatingAfter: 1500, Type: model.EventRegression},
		}

		per, league := standings.Summarize(recs)

		Convey("Then per-competitor aggregates ignore the regression", func() {
			So(len(per), ShouldEqual, 2)
			a := per[0]
			So(a.Competitor, ShouldEqual, "A")
			So(a.Games, ShouldEqual, 2)
			So(a.MeanExpectedWin, ShouldAlmostEqual, 0.55, 1e-12)
			So(a.MeanRating, ShouldEqual, 1510.0)
			So(a.MaxRating, ShouldEqual, 1520.0)
			So(a.MinRating, ShouldEqual, 1500.0)
			So(a.MeanMatchupDiff, ShouldEqual, 20.0)
			So(per[1].MeanMatchupDiff, ShouldEqual, -20.0)
		})

		Convey("Then the league mean is a coin flip", func() {
			So(len(league), ShouldEqual, 1)
			So(league[0].Games, ShouldEqual, 4)
			So(league[0].MeanExpectedWin, ShouldAlmostEqual, 0.5, 1e-12)
		})
	})
}
