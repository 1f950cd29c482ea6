package grading_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/touchline/pickscore/internal/adapters/repository"
	"github.com/touchline/pickscore/internal/domain/grading"
	"github.com/touchline/pickscore/internal/domain/model"
)

var fixedNow = time.Date(2025, 9, 8, 3, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func seedGame(store *repository.MemStore, first model.PlayerID, scorers []model.PlayerID) *model.Game {
	g := &model.Game{
		ID:          uuid.New(),
		Season:      2025,
		Week:        1,
		HomeTeam:    "KC",
		AwayTeam:    "BUF",
		Kickoff:     time.Date(2025, 9, 7, 20, 0, 0, 0, time.UTC),
		Completed:   true,
		FirstScorer: first,
		Scorers:     scorers,
	}
	store.PutGame(g)
	return g
}

func seedPick(store *repository.MemStore, gameID uuid.UUID, selected model.PlayerID) *model.Pick {
	p := &model.Pick{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		GameID:      gameID,
		Selected:    selected,
		Status:      model.StatusPending,
		SubmittedAt: time.Date(2025, 9, 6, 12, 0, 0, 0, time.UTC),
	}
	store.PutPick(p)
	return p
}

func TestOutcome(t *testing.T) {
	Convey("Given scoring facts for a completed game", t, func() {
		first := model.PlayerID("mahomes")
		scorers := map[model.PlayerID]struct{}{
			"mahomes": {},
			"kelce":   {},
			"allen":   {},
		}

		Convey("When the selection hit the first scorer", func() {
			status, primary, secondary := grading.Outcome("mahomes", first, scorers)

			Convey("Then primary and secondary points stack", func() {
				So(status, ShouldEqual, model.StatusWin)
				So(primary, ShouldEqual, 3)
				So(secondary, ShouldEqual, 1)
			})
		})

		Convey("When the selection scored but not first", func() {
			status, primary, secondary := grading.Outcome("kelce", first, scorers)
			So(status, ShouldEqual, model.StatusWin)
			So(primary, ShouldEqual, 0)
			So(secondary, ShouldEqual, 1)
		})

		Convey("When the selection never scored", func() {
			status, primary, secondary := grading.Outcome("hill", first, scorers)
			So(status, ShouldEqual, model.StatusLoss)
			So(primary, ShouldEqual, 0)
			So(secondary, ShouldEqual, 0)
		})

		Convey("When the selection scored several touchdowns", func() {
			// The scorer set is distinct, so a hat trick is still one
			// secondary point.
			multi := (&model.Game{Scorers: []model.PlayerID{"kelce", "kelce", "kelce"}}).ScorerSet()
			_, _, secondary := grading.Outcome("kelce", first, multi)
			So(secondary, ShouldEqual, 1)
		})

		Convey("When the first scorer is missing from the scorer list", func() {
			status, primary, secondary := grading.Outcome("mahomes", first, map[model.PlayerID]struct{}{"kelce": {}})

			Convey("Then the primary hit still stacks the secondary point", func() {
				So(status, ShouldEqual, model.StatusWin)
				So(primary, ShouldEqual, 3)
				So(secondary, ShouldEqual, 1)
			})
		})

		Convey("When no first scorer was recorded", func() {
			status, primary, secondary := grading.Outcome("kelce", "", scorers)
			So(status, ShouldEqual, model.StatusWin)
			So(primary, ShouldEqual, 0)
			So(secondary, ShouldEqual, 1)
		})
	})
}

func TestEngineGrade(t *testing.T) {
	Convey("Given a completed game with pending picks", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		engine := grading.NewEngine(store, grading.WithClock(clock))

		game := seedGame(store, "mahomes", []model.PlayerID{"mahomes", "kelce"})
		winner := seedPick(store, game.ID, "mahomes")
		partial := seedPick(store, game.ID, "kelce")
		loser := seedPick(store, game.ID, "hill")

		Convey("When the game is graded", func() {
			graded, err := engine.Grade(ctx, game.ID)
			So(err, ShouldBeNil)
			So(graded, ShouldEqual, 3)

			Convey("Then each pick settles per its category hits", func() {
				p, _ := store.Pick(ctx, winner.ID)
				So(p.Status, ShouldEqual, model.StatusWin)
				So(p.TotalPoints, ShouldEqual, 4)
				So(*p.ScoredAt, ShouldEqual, fixedNow)

				p, _ = store.Pick(ctx, partial.ID)
				So(p.Status, ShouldEqual, model.StatusWin)
				So(p.TotalPoints, ShouldEqual, 1)

				p, _ = store.Pick(ctx, loser.ID)
				So(p.Status, ShouldEqual, model.StatusLoss)
				So(p.TotalPoints, ShouldEqual, 0)
			})

			Convey("And the owners' aggregates carry the contributions", func() {
				agg, err := store.UserAggregate(ctx, winner.UserID)
				So(err, ShouldBeNil)
				So(agg.TotalScore, ShouldEqual, 4)
				So(agg.TotalWins, ShouldEqual, 1)

				agg, _ = store.UserAggregate(ctx, loser.UserID)
				So(agg.TotalScore, ShouldEqual, 0)
				So(agg.TotalLosses, ShouldEqual, 1)
			})

			Convey("And regrading the same game changes nothing", func() {
				graded, err := engine.Grade(ctx, game.ID)
				So(err, ShouldBeNil)
				So(graded, ShouldEqual, 0)

				agg, _ := store.UserAggregate(ctx, winner.UserID)
				So(agg.TotalScore, ShouldEqual, 4)
				So(agg.TotalWins, ShouldEqual, 1)
			})
		})

		Convey("When one pick fails to commit", func() {
			commitErr := errors.New("connection reset")
			store.FailCommitFor(partial.ID, commitErr)

			graded, err := engine.Grade(ctx, game.ID)

			Convey("Then the rest of the batch still settles", func() {
				So(graded, ShouldEqual, 2)
				So(err, ShouldNotBeNil)
				So(errors.Is(err, commitErr), ShouldBeTrue)

				p, _ := store.Pick(ctx, winner.ID)
				So(p.Status, ShouldEqual, model.StatusWin)
			})

			Convey("And the failed pick stays pending for the next run", func() {
				p, _ := store.Pick(ctx, partial.ID)
				So(p.Status, ShouldEqual, model.StatusPending)

				store.FailCommitFor(partial.ID, nil)
				graded, err := engine.Grade(ctx, game.ID)
				So(err, ShouldBeNil)
				So(graded, ShouldEqual, 1)

				p, _ = store.Pick(ctx, partial.ID)
				So(p.Status, ShouldEqual, model.StatusWin)
			})
		})

		Convey("When the game is not completed", func() {
			game.Completed = false
			store.PutGame(game)

			graded, err := engine.Grade(ctx, game.ID)
			So(graded, ShouldEqual, 0)
			So(errors.Is(err, grading.ErrGameNotCompleted), ShouldBeTrue)
		})

		Convey("When the game does not exist", func() {
			_, err := engine.Grade(ctx, uuid.New())
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestEngineManualGrade(t *testing.T) {
	Convey("Given an ungraded game missing provider facts", t, func() {
		ctx := context.Background()
		actor := uuid.New()

		manualStore := repository.NewMemStore()
		manualEngine := grading.NewEngine(manualStore, grading.WithClock(clock))
		manualGame := seedGame(manualStore, "", nil)
		manualPick := seedPick(manualStore, manualGame.ID, "mahomes")

		autoStore := repository.NewMemStore()
		autoEngine := grading.NewEngine(autoStore, grading.WithClock(clock))
		autoGame := seedGame(autoStore, "mahomes", []model.PlayerID{"mahomes", "kelce"})
		autoPick := seedPick(autoStore, autoGame.ID, "mahomes")

		Convey("When an operator supplies the same facts manually", func() {
			graded, err := manualEngine.ManualGrade(ctx, manualGame.ID, "mahomes", []model.PlayerID{"mahomes", "kelce"}, actor)
			So(err, ShouldBeNil)
			So(graded, ShouldEqual, 1)

			autoGraded, err := autoEngine.Grade(ctx, autoGame.ID)
			So(err, ShouldBeNil)
			So(autoGraded, ShouldEqual, 1)

			Convey("Then the manual path settles identically to the automated one", func() {
				mp, _ := manualStore.Pick(ctx, manualPick.ID)
				ap, _ := autoStore.Pick(ctx, autoPick.ID)
				So(mp.Status, ShouldEqual, ap.Status)
				So(mp.PrimaryPoints, ShouldEqual, ap.PrimaryPoints)
				So(mp.SecondaryPoints, ShouldEqual, ap.SecondaryPoints)
				So(mp.TotalPoints, ShouldEqual, ap.TotalPoints)
			})

			Convey("And the game records the manual scoring", func() {
				g, _ := manualStore.Game(ctx, manualGame.ID)
				So(g.ManuallyScored, ShouldBeTrue)
				So(g.FirstScorer, ShouldEqual, model.PlayerID("mahomes"))
			})
		})

		Convey("When the game does not exist", func() {
			_, err := manualEngine.ManualGrade(ctx, uuid.New(), "mahomes", nil, actor)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestEngineManualOverride(t *testing.T) {
	Convey("Given a graded pick", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		engine := grading.NewEngine(store, grading.WithClock(clock))
		actor := uuid.New()

		game := seedGame(store, "kelce", []model.PlayerID{"kelce"})
		pick := seedPick(store, game.ID, "mahomes")
		other := seedPick(store, game.ID, "kelce")

		_, err := engine.Grade(ctx, game.ID)
		So(err, ShouldBeNil)

		Convey("When a loss is corrected to a stacked win", func() {
			updated, err := engine.ManualOverride(ctx, pick.ID, model.StatusWin, 3, 1, actor)
			So(err, ShouldBeNil)

			Convey("Then the pick carries the new result and the audit trail", func() {
				So(updated.Status, ShouldEqual, model.StatusWin)
				So(updated.TotalPoints, ShouldEqual, 4)
				So(updated.ManualOverride, ShouldBeTrue)
				So(*updated.OverrideBy, ShouldEqual, actor)
				So(*updated.OverrideAt, ShouldEqual, fixedNow)
			})

			Convey("And the aggregate moves by exactly the difference", func() {
				agg, _ := store.UserAggregate(ctx, pick.UserID)
				So(agg.TotalScore, ShouldEqual, 4)
				So(agg.TotalWins, ShouldEqual, 1)
				So(agg.TotalLosses, ShouldEqual, 0)
			})
		})

		Convey("When the same override is applied twice", func() {
			userID := uuid.New()
			prior := &model.Pick{
				ID: uuid.New(), UserID: userID, GameID: game.ID,
				Selected: "kelce", Status: model.StatusPending,
				SubmittedAt: time.Date(2025, 9, 6, 9, 0, 0, 0, time.UTC),
			}
			store.PutPick(prior)
			_, err := engine.ManualOverride(ctx, prior.ID, model.StatusWin, 3, 1, actor)
			So(err, ShouldBeNil)

			agg, _ := store.UserAggregate(ctx, userID)
			So(agg.TotalScore, ShouldEqual, 4)

			_, err = engine.ManualOverride(ctx, prior.ID, model.StatusWin, 3, 1, actor)
			So(err, ShouldBeNil)

			Convey("Then a repeated identical override is a no-op on the aggregate", func() {
				agg, _ := store.UserAggregate(ctx, userID)
				So(agg.TotalScore, ShouldEqual, 4)
				So(agg.TotalWins, ShouldEqual, 1)
			})
		})

		Convey("When the override downgrades a win to a loss", func() {
			graded, _ := store.Pick(ctx, other.ID)
			So(graded.Status, ShouldEqual, model.StatusWin)

			_, err := engine.ManualOverride(ctx, other.ID, model.StatusLoss, 0, 0, actor)
			So(err, ShouldBeNil)

			agg, _ := store.UserAggregate(ctx, other.UserID)
			So(agg.TotalScore, ShouldEqual, 0)
			So(agg.TotalWins, ShouldEqual, 0)
			So(agg.TotalLosses, ShouldEqual, 1)
		})

		Convey("When the override asks for an impossible combination", func() {
			cases := []struct {
				status    model.PickStatus
				primary   int
				secondary int
			}{
				{model.StatusPending, 0, 0},
				{model.PickStatus("bogus"), 0, 0},
				{model.StatusWin, 2, 0},
				{model.StatusWin, 0, 2},
				{model.StatusWin, 0, 0},
				{model.StatusLoss, 3, 0},
				{model.StatusVoid, 0, 1},
			}
			for _, c := range cases {
				_, err := engine.ManualOverride(ctx, pick.ID, c.status, c.primary, c.secondary, actor)
				So(errors.Is(err, grading.ErrInvalidOverride), ShouldBeTrue)
			}
		})

		Convey("When the pick does not exist", func() {
			_, err := engine.ManualOverride(ctx, uuid.New(), model.StatusWin, 3, 1, actor)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}
