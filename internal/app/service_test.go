package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/touchline/pickscore/internal/adapters/cache"
	"github.com/touchline/pickscore/internal/adapters/repository"
	"github.com/touchline/pickscore/internal/app"
	"github.com/touchline/pickscore/internal/domain/grading"
	"github.com/touchline/pickscore/internal/domain/model"
)

func newCachedService(store repository.Store) *app.Service {
	coord := cache.NewCoordinator(cache.NewMemory())
	return app.New(store, app.WithCache(coord), app.WithWorkerCount(2))
}

func seedScenario(store *repository.MemStore) (*model.Game, *model.Pick, *model.Pick) {
	game := &model.Game{
		ID: uuid.New(), Season: 2025, Week: 1,
		Kickoff:     time.Date(2025, 9, 7, 20, 0, 0, 0, time.UTC),
		Completed:   true,
		FirstScorer: "mahomes",
		Scorers:     []model.PlayerID{"mahomes", "kelce"},
	}
	store.PutGame(game)

	winner := &model.Pick{ID: uuid.New(), UserID: uuid.New(), GameID: game.ID,
		Selected: "mahomes", Status: model.StatusPending,
		SubmittedAt: time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)}
	loser := &model.Pick{ID: uuid.New(), UserID: uuid.New(), GameID: game.ID,
		Selected: "hill", Status: model.StatusPending,
		SubmittedAt: time.Date(2025, 9, 6, 11, 0, 0, 0, time.UTC)}
	store.PutPick(winner)
	store.PutPick(loser)
	return game, winner, loser
}

func TestServiceGradeGame(t *testing.T) {
	Convey("Given a service over a seeded store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		svc := newCachedService(store)
		game, winner, _ := seedScenario(store)

		Convey("When a cached leaderboard exists before grading", func() {
			before, err := svc.Leaderboard(ctx, model.SeasonScope(2025), nil)
			So(err, ShouldBeNil)
			So(before.Entries[0].TotalPoints, ShouldEqual, 0)

			graded, err := svc.GradeGame(ctx, game.ID)
			So(err, ShouldBeNil)
			So(graded, ShouldEqual, 2)

			Convey("Then the next read reflects the grades, not the stale cache", func() {
				after, err := svc.Leaderboard(ctx, model.SeasonScope(2025), nil)
				So(err, ShouldBeNil)
				So(after.Entries[0].UserID, ShouldEqual, winner.UserID)
				So(after.Entries[0].TotalPoints, ShouldEqual, 4)
			})

			Convey("And the week leaderboard was invalidated too", func() {
				week, err := svc.Leaderboard(ctx, model.WeekScope(2025, 1), nil)
				So(err, ShouldBeNil)
				So(week.Entries[0].TotalPoints, ShouldEqual, 4)
			})

			Convey("And the winner's cached stats were invalidated", func() {
				stats, err := svc.UserStats(ctx, winner.UserID, nil)
				So(err, ShouldBeNil)
				So(stats.Wins, ShouldEqual, 1)
				So(stats.TotalPoints, ShouldEqual, 4)
			})
		})

		Convey("When the game is not completed", func() {
			game.Completed = false
			store.PutGame(game)

			_, err := svc.GradeGame(ctx, game.ID)
			So(errors.Is(err, grading.ErrGameNotCompleted), ShouldBeTrue)
		})
	})
}

func TestServiceManualGradeGame(t *testing.T) {
	Convey("Given a completed game with no scoring facts", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		svc := newCachedService(store)
		actor := uuid.New()

		game := &model.Game{ID: uuid.New(), Season: 2025, Week: 1,
			Kickoff: time.Date(2025, 9, 7, 20, 0, 0, 0, time.UTC)}
		store.PutGame(game)
		pick := &model.Pick{ID: uuid.New(), UserID: uuid.New(), GameID: game.ID,
			Selected: model.NormalizePlayerID("Mahomes"), Status: model.StatusPending,
			SubmittedAt: time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)}
		store.PutPick(pick)

		Convey("When an operator scores it with raw provider ids", func() {
			graded, err := svc.ManualGradeGame(ctx, game.ID, " MAHOMES ", []string{"Mahomes", "kelce"}, actor)
			So(err, ShouldBeNil)
			So(graded, ShouldEqual, 1)

			Convey("Then the identifiers were normalized before matching", func() {
				p, _ := store.Pick(ctx, pick.ID)
				So(p.Status, ShouldEqual, model.StatusWin)
				So(p.TotalPoints, ShouldEqual, 4)
			})

			Convey("And the game is marked manually scored and completed", func() {
				g, _ := store.Game(ctx, game.ID)
				So(g.Completed, ShouldBeTrue)
				So(g.ManuallyScored, ShouldBeTrue)
			})
		})
	})
}

func TestServiceOverridePick(t *testing.T) {
	Convey("Given a graded pick behind a warm cache", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		svc := newCachedService(store)
		game, winner, loser := seedScenario(store)
		actor := uuid.New()

		_, err := svc.GradeGame(ctx, game.ID)
		So(err, ShouldBeNil)

		before, err := svc.Leaderboard(ctx, model.SeasonScope(2025), nil)
		So(err, ShouldBeNil)
		So(before.Entries[0].UserID, ShouldEqual, winner.UserID)

		Convey("When the losing pick is overridden to a win", func() {
			updated, err := svc.OverridePick(ctx, loser.ID, model.StatusWin, 3, 1, actor)
			So(err, ShouldBeNil)
			So(updated.ManualOverride, ShouldBeTrue)

			Convey("Then the leaderboard reflects the correction immediately", func() {
				after, err := svc.Leaderboard(ctx, model.SeasonScope(2025), nil)
				So(err, ShouldBeNil)
				So(after.Entries[0].Rank, ShouldEqual, 1)
				So(after.Entries[1].Rank, ShouldEqual, 1)
				So(after.Entries[0].IsTied, ShouldBeTrue)
			})

			Convey("And the user's stats reflect it too", func() {
				stats, err := svc.UserStats(ctx, loser.UserID, nil)
				So(err, ShouldBeNil)
				So(stats.Wins, ShouldEqual, 1)
				So(stats.Losses, ShouldEqual, 0)
			})
		})

		Convey("When the override is invalid", func() {
			_, err := svc.OverridePick(ctx, loser.ID, model.StatusWin, 0, 0, actor)
			So(errors.Is(err, grading.ErrInvalidOverride), ShouldBeTrue)
		})

		Convey("When the pick does not exist", func() {
			_, err := svc.OverridePick(ctx, uuid.New(), model.StatusLoss, 0, 0, actor)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

// gatedStore blocks GamesInScope until released, pinning a bulk job
// in-flight so the per-season guard can be observed.
type gatedStore struct {
	repository.Store
	gate    chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (g *gatedStore) GamesInScope(ctx context.Context, scope model.Scope) ([]*model.Game, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.gate
	return g.Store.GamesInScope(ctx, scope)
}

func TestServiceGradeWeek(t *testing.T) {
	Convey("Given a week with completed and unfinished games", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		svc := newCachedService(store)

		_, winner, _ := seedScenario(store)
		unfinished := &model.Game{ID: uuid.New(), Season: 2025, Week: 1,
			Kickoff: time.Date(2025, 9, 7, 23, 0, 0, 0, time.UTC)}
		store.PutGame(unfinished)
		store.PutPick(&model.Pick{ID: uuid.New(), UserID: uuid.New(), GameID: unfinished.ID,
			Selected: "allen", Status: model.StatusPending,
			SubmittedAt: time.Date(2025, 9, 6, 12, 0, 0, 0, time.UTC)})

		Convey("When the week is graded in bulk", func() {
			res, err := svc.GradeWeek(ctx, model.WeekScope(2025, 1))
			So(err, ShouldBeNil)

			Convey("Then only completed games were touched", func() {
				So(res.Games, ShouldEqual, 1)
				So(res.Graded, ShouldEqual, 2)
				So(res.Failures, ShouldBeEmpty)

				p, _ := store.PicksByGame(ctx, unfinished.ID)
				So(p[0].Status, ShouldEqual, model.StatusPending)
			})

			Convey("And the leaderboard serves the new totals", func() {
				lb, err := svc.Leaderboard(ctx, model.WeekScope(2025, 1), nil)
				So(err, ShouldBeNil)
				So(lb.Entries[0].UserID, ShouldEqual, winner.UserID)
				So(lb.Entries[0].TotalPoints, ShouldEqual, 4)
			})

			Convey("And a follow-up job for the same season is allowed", func() {
				res, err := svc.GradeWeek(ctx, model.WeekScope(2025, 1))
				So(err, ShouldBeNil)
				So(res.Graded, ShouldEqual, 0)
			})
		})

		Convey("When a job is already running for the season", func() {
			gated := &gatedStore{Store: store, gate: make(chan struct{}), entered: make(chan struct{})}
			slow := app.New(gated, app.WithWorkerCount(1))

			errCh := make(chan error, 1)
			go func() {
				_, err := slow.GradeWeek(ctx, model.WeekScope(2025, 1))
				errCh <- err
			}()
			<-gated.entered

			Convey("Then a concurrent attempt is rejected, not queued", func() {
				_, err := slow.GradeWeek(ctx, model.WeekScope(2025, 2))
				So(errors.Is(err, app.ErrJobActive), ShouldBeTrue)

				close(gated.gate)
				So(<-errCh, ShouldBeNil)

				Convey("And the guard releases once the job finishes", func() {
					_, err := slow.GradeWeek(ctx, model.WeekScope(2025, 2))
					So(err, ShouldBeNil)
				})
			})
		})

		Convey("When the scope is invalid", func() {
			_, err := svc.GradeWeek(ctx, model.SeasonScope(-1))
			So(errors.Is(err, model.ErrInvalidScope), ShouldBeTrue)
		})
	})
}

func TestServiceLeaderboardReads(t *testing.T) {
	Convey("Given a graded season", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		svc := newCachedService(store)
		game, winner, loser := seedScenario(store)

		_, err := svc.GradeGame(ctx, game.ID)
		So(err, ShouldBeNil)

		Convey("When a caller asks for their own position", func() {
			lb, err := svc.Leaderboard(ctx, model.SeasonScope(2025), &loser.UserID)
			So(err, ShouldBeNil)

			Convey("Then their row is surfaced alongside the entries", func() {
				So(lb.UserPosition, ShouldNotBeNil)
				So(lb.UserPosition.UserID, ShouldEqual, loser.UserID)
				So(lb.UserPosition.Rank, ShouldEqual, 2)
			})
		})

		Convey("When the caller is not on the board", func() {
			stranger := uuid.New()
			lb, err := svc.Leaderboard(ctx, model.SeasonScope(2025), &stranger)
			So(err, ShouldBeNil)
			So(lb.UserPosition, ShouldBeNil)
		})

		Convey("When stats are requested for a single week", func() {
			scope := model.WeekScope(2025, 1)
			stats, err := svc.UserStats(ctx, winner.UserID, &scope)
			So(err, ShouldBeNil)
			So(stats.Wins, ShouldEqual, 1)
			So(stats.TotalPoints, ShouldEqual, 4)
		})

		Convey("When the service runs without a cache", func() {
			bare := app.New(store)
			lb, err := bare.Leaderboard(ctx, model.SeasonScope(2025), nil)
			So(err, ShouldBeNil)
			So(lb.TotalUsers, ShouldEqual, 2)
		})
	})
}
