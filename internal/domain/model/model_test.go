package model_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/touchline/pickscore/internal/domain/model"
)

func TestNormalizePlayerID(t *testing.T) {
	Convey("Given raw player identifiers", t, func() {
		Convey("When normalizing a plain string id", func() {
			So(model.NormalizePlayerID("  Player-22  "), ShouldEqual, model.PlayerID("player-22"))
			So(model.NormalizePlayerID("PLAYER-22"), ShouldEqual, model.PlayerID("player-22"))
		})

		Convey("When normalizing a uuid in mixed case", func() {
			id := "6BA7B810-9DAD-11D1-80B4-00C04FD430C8"
			So(model.NormalizePlayerID(id), ShouldEqual, model.PlayerID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
		})

		Convey("When the input is empty", func() {
			So(model.NormalizePlayerID("   "), ShouldEqual, model.PlayerID(""))
			So(model.NormalizePlayerID("").Unknown(), ShouldBeTrue)
		})

		Convey("Then two spellings of the same player compare equal", func() {
			a := model.NormalizePlayerID("T.Hill")
			b := model.NormalizePlayerID("t.hill ")
			So(a, ShouldEqual, b)
		})
	})
}

func TestNormalizePlayerIDs(t *testing.T) {
	Convey("Given a raw scorer list", t, func() {
		ids := model.NormalizePlayerIDs([]string{"A", " b", "a"})

		Convey("Then every entry is normalized", func() {
			So(ids, ShouldResemble, []model.PlayerID{"a", "b", "a"})
		})
	})
}

func TestScopeValidate(t *testing.T) {
	Convey("Given scoring scopes", t, func() {
		Convey("When the scope covers a whole season", func() {
			s := model.SeasonScope(2025)
			So(s.Validate(), ShouldBeNil)
			So(s.IsSeason(), ShouldBeTrue)
			So(s.String(), ShouldEqual, "2025")
		})

		Convey("When the scope covers a single week", func() {
			s := model.WeekScope(2025, 3)
			So(s.Validate(), ShouldBeNil)
			So(s.IsSeason(), ShouldBeFalse)
			So(s.String(), ShouldEqual, "2025:w03")
		})

		Convey("When the week is out of range", func() {
			So(model.WeekScope(2025, -1).Validate(), ShouldNotBeNil)
			So(model.WeekScope(2025, 26).Validate(), ShouldNotBeNil)
		})

		Convey("When the season is not positive", func() {
			So(model.SeasonScope(0).Validate(), ShouldNotBeNil)
		})

		Convey("Then Contains honors the scope kind", func() {
			season := model.SeasonScope(2025)
			So(season.Contains(2025, 1), ShouldBeTrue)
			So(season.Contains(2025, 17), ShouldBeTrue)
			So(season.Contains(2024, 1), ShouldBeFalse)

			week := model.WeekScope(2025, 3)
			So(week.Contains(2025, 3), ShouldBeTrue)
			So(week.Contains(2025, 4), ShouldBeFalse)
		})
	})
}

func TestPickSetScore(t *testing.T) {
	Convey("Given a pending pick", t, func() {
		pick := &model.Pick{ID: uuid.New(), UserID: uuid.New(), Status: model.StatusPending}
		at := time.Date(2025, 9, 7, 20, 0, 0, 0, time.UTC)

		Convey("When a win is applied", func() {
			pick.SetScore(model.StatusWin, 3, 1, at)

			Convey("Then total points always equal primary plus secondary", func() {
				So(pick.TotalPoints, ShouldEqual, 4)
				So(pick.Status, ShouldEqual, model.StatusWin)
				So(*pick.ScoredAt, ShouldEqual, at)
				So(*pick.SettledAt, ShouldEqual, at)
			})

			Convey("And its contribution counts the win and the points", func() {
				So(pick.Contribution(), ShouldResemble, model.ScoreDelta{Score: 4, Wins: 1})
			})
		})

		Convey("When a loss is applied", func() {
			pick.SetScore(model.StatusLoss, 0, 0, at)
			So(pick.TotalPoints, ShouldEqual, 0)
			So(pick.Contribution(), ShouldResemble, model.ScoreDelta{Losses: 1})
		})

		Convey("When the pick is voided", func() {
			pick.SetScore(model.StatusVoid, 0, 0, at)
			So(pick.Contribution().IsZero(), ShouldBeTrue)
		})

		Convey("Then a pending pick contributes nothing", func() {
			fresh := &model.Pick{Status: model.StatusPending}
			So(fresh.Contribution().IsZero(), ShouldBeTrue)
		})
	})
}

func TestScoreDelta(t *testing.T) {
	Convey("Given score deltas", t, func() {
		d := model.ScoreDelta{Score: 4, Wins: 1}

		Convey("When inverted and re-added", func() {
			So(d.Invert().Add(d).IsZero(), ShouldBeTrue)
		})

		Convey("When replacing a win with a loss", func() {
			next := model.ScoreDelta{Losses: 1}
			combined := d.Invert().Add(next)
			So(combined, ShouldResemble, model.ScoreDelta{Score: -4, Wins: -1, Losses: 1})
		})

		Convey("When folded into an aggregate", func() {
			agg := &model.UserAggregate{UserID: uuid.New(), TotalScore: 10, TotalWins: 3}
			agg.Apply(model.ScoreDelta{Score: 4, Wins: 1})
			So(agg.TotalScore, ShouldEqual, 14)
			So(agg.TotalWins, ShouldEqual, 4)
		})
	})
}

func TestPickStatus(t *testing.T) {
	Convey("Given pick settlement states", t, func() {
		Convey("Then only win and loss are graded", func() {
			So(model.StatusWin.Graded(), ShouldBeTrue)
			So(model.StatusLoss.Graded(), ShouldBeTrue)
			So(model.StatusPending.Graded(), ShouldBeFalse)
			So(model.StatusVoid.Graded(), ShouldBeFalse)
		})

		Convey("Then unknown states are invalid", func() {
			So(model.PickStatus("cancelled").Valid(), ShouldBeFalse)
			So(model.StatusVoid.Valid(), ShouldBeTrue)
		})
	})
}

func TestGameScorerSet(t *testing.T) {
	Convey("Given a game with repeat scorers", t, func() {
		g := &model.Game{
			ID:      uuid.New(),
			Season:  2025,
			Week:    1,
			Scorers: []model.PlayerID{"a", "b", "a", "a"},
		}

		Convey("Then the scorer set is distinct", func() {
			set := g.ScorerSet()
			So(len(set), ShouldEqual, 2)
			_, ok := set["a"]
			So(ok, ShouldBeTrue)
		})

		Convey("Then the game's scope matches its season and week", func() {
			So(g.Scope(), ShouldResemble, model.WeekScope(2025, 1))
		})
	})
}
