package dedupe_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/gridelo/internal/domain/dedupe"
	"github.com/okian/gridelo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryGuard(t *testing.T) {
	Convey("Given a new guard", t, func() {
		ctx := context.Background()
		g := dedupe.NewInMemoryGuard()
		key := dedupe.GameKey(2025, 3, "Detroit Lions")

		Convey("When a completion is recorded for the first time", func() {
			seen := g.SeenAndRecord(ctx, key)

			Convey("Then it is accepted and remembered", func() {
				So(seen, ShouldBeFalse)
				So(g.Seen(ctx, key), ShouldBeTrue)
				So(g.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same completion is recorded twice", func() {
			g.SeenAndRecord(ctx, key)
			seen := g.SeenAndRecord(ctx, key)

			Convey("Then the second attempt is rejected", func() {
				So(seen, ShouldBeTrue)
				So(g.Size(), ShouldEqual, 1)
			})
		})

		Convey("When keys differ only by sub-period or competitor", func() {
			g.SeenAndRecord(ctx, key)

			Convey("Then they are independent", func() {
				So(g.SeenAndRecord(ctx, dedupe.GameKey(2025, 4, "Detroit Lions")), ShouldBeFalse)
				So(g.SeenAndRecord(ctx, dedupe.GameKey(2025, 3, "Chicago Bears")), ShouldBeFalse)
				So(g.Size(), ShouldEqual, 3)
			})
		})

		Convey("When a completion is unrecorded", func() {
			g.SeenAndRecord(ctx, key)
			g.Unrecord(ctx, key)
			g.Unrecord(ctx, dedupe.GameKey(1, 1, "nobody"))

			Convey("Then it can be applied again", func() {
				So(g.Size(), ShouldEqual, 0)
				So(g.SeenAndRecord(ctx, key), ShouldBeFalse)
			})
		})
	})

	Convey("Given a bounded guard at capacity", t, func() {
		ctx := context.Background()
		g := dedupe.NewInMemoryGuard(dedupe.WithMaxSize(2))
		a, b, c := dedupe.GameKey(1, 1, "a"), dedupe.GameKey(1, 1, "b"), dedupe.GameKey(1, 1, "c")
		g.SeenAndRecord(ctx, a)
		g.SeenAndRecord(ctx, b)

		Convey("When another key arrives", func() {
			g.SeenAndRecord(ctx, c)

			Convey("Then the oldest is evicted", func() {
				So(g.Size(), ShouldEqual, 2)
				So(g.Seen(ctx, a), ShouldBeFalse)
				So(g.Seen(ctx, b), ShouldBeTrue)
				So(g.Seen(ctx, c), ShouldBeTrue)
			})
		})
	})
}

func TestSeed(t *testing.T) {
	Convey("Given projection rows with one completed game", t, func() {
		ctx := context.Background()
		rows := []model.Projection{
			{Period: 2025, SubPeriod: 1, Competitor: "A", Type: model.ProjectionGame, RatingAfter: model.Some(1510)},
			{Period: 2025, SubPeriod: 1, Competitor: "B", Type: model.ProjectionPrediction},
			{Period: 2025, SubPeriod: 0, Competitor: "C", Type: model.ProjectionRegressionStart},
		}
		g := dedupe.NewInMemoryGuard()
		dedupe.Seed(ctx, g, rows)

		Convey("Then only the completed row is guarded", func() {
			So(g.Size(), ShouldEqual, 1)
			So(g.Seen(ctx, dedupe.GameKey(2025, 1, "A")), ShouldBeTrue)
			So(g.Seen(ctx, dedupe.GameKey(2025, 1, "B")), ShouldBeFalse)
		})
	})
}

func TestDuplicateUpdateError(t *testing.T) {
	Convey("Given a duplicate update error", t, func() {
		err := error(&dedupe.DuplicateUpdateError{Key: dedupe.GameKey(2025, 2, "A")})

		So(errors.Is(err, dedupe.ErrDuplicateUpdate), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "2025/2/A/game")
	})
}

func TestGuardConcurrency(t *testing.T) {
	Convey("Given many goroutines racing to complete the same key", t, func() {
		ctx := context.Background()
		g := dedupe.NewInMemoryGuard()
		key := dedupe.GameKey(2025, 5, "A")

		var wg sync.WaitGroup
		var mu sync.Mutex
		accepted := 0
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !g.SeenAndRecord(ctx, key) {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one wins", func() {
			So(accepted, ShouldEqual, 1)
			So(g.Size(), ShouldEqual, 1)
		})
	})
}
