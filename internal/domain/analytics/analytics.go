// Package analytics derives streaks and per-week performance from a user's
// graded pick history.
package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/touchline/pickscore/internal/adapters/repository"
	"github.com/touchline/pickscore/internal/domain/model"
	"github.com/touchline/pickscore/internal/domain/ranking"
	"github.com/touchline/pickscore/internal/domain/types"
)

// Calculator computes per-user stats from the event store.
type Calculator struct {
	store repository.Store
}

// NewCalculator creates an analytics calculator backed by the given store.
func NewCalculator(store repository.Store) *Calculator {
	return &Calculator{store: store}
}

// weekKey addresses a week across seasons so all-time stats compare weeks
// from different years correctly.
type weekKey struct {
	season int
	week   int
}

func (k weekKey) before(other weekKey) bool {
	if k.season != other.season {
		return k.season < other.season
	}
	return k.week < other.week
}

// Stats summarizes a user's performance, all-time when scope is nil. Picks
// are ordered by the game's real-world kickoff, not submission time.
func (c *Calculator) Stats(ctx context.Context, userID uuid.UUID, scope *model.Scope) (*types.UserStats, error) {
	if scope != nil {
		if err := scope.Validate(); err != nil {
			return nil, err
		}
	}

	picks, err := c.store.PicksByUser(ctx, userID, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks: %w", err)
	}

	stats := &types.UserStats{
		UserID:        userID,
		Scope:         scope,
		CurrentStreak: types.Streak{Type: types.StreakNone},
	}

	graded := make([]repository.ScopedPick, 0, len(picks))
	weeks := make(map[weekKey]*types.WeekPerformance)
	for _, sp := range picks {
		p := sp.Pick
		if p.Status == model.StatusPending {
			stats.PendingCount++
			continue
		}
		if !p.Status.Graded() {
			continue
		}
		graded = append(graded, sp)

		key := weekKey{season: sp.Season, week: sp.Week}
		wp, ok := weeks[key]
		if !ok {
			wp = &types.WeekPerformance{Week: sp.Week}
			weeks[key] = wp
		}
		if p.Status == model.StatusWin {
			stats.Wins++
			stats.TotalPoints += p.TotalPoints
			wp.Wins++
			wp.Points += p.TotalPoints
			if p.PrimaryPoints > 0 {
				stats.FirstScorerHits.Hits++
				stats.FirstScorerHits.Points += p.PrimaryPoints
			}
			if p.SecondaryPoints > 0 {
				stats.AnyScorerHits.Hits++
				stats.AnyScorerHits.Points += p.SecondaryPoints
			}
		} else {
			stats.Losses++
			wp.Losses++
		}
	}
	stats.WinPercentage = ranking.WinPercentage(stats.Wins, stats.Losses)

	bestKey, worstKey := pickWeeks(weeks)
	if wp, ok := weeks[bestKey]; ok {
		stats.BestWeek = wp
		c.fillWeekRank(ctx, userID, bestKey, wp)
	}
	if wp, ok := weeks[worstKey]; ok {
		stats.WorstWeek = wp
		c.fillWeekRank(ctx, userID, worstKey, wp)
	}

	stats.CurrentStreak = CurrentStreak(graded)
	stats.LongestWinStreak, stats.LongestLossStreak = LongestStreaks(graded)
	return stats, nil
}

// pickWeeks chooses the best and worst week keys. Best is the maximum
// points week, earliest week on ties. Worst considers only weeks with
// positive points, so an all-zero week is never reported as worse than a
// productive one; when no week scored, worst is absent.
func pickWeeks(weeks map[weekKey]*types.WeekPerformance) (best, worst weekKey) {
	var haveBest, haveWorst bool
	for key, wp := range weeks {
		if !haveBest || wp.Points > weeks[best].Points ||
			(wp.Points == weeks[best].Points && key.before(best)) {
			best = key
			haveBest = true
		}
		if wp.Points <= 0 {
			continue
		}
		if !haveWorst || wp.Points < weeks[worst].Points ||
			(wp.Points == weeks[worst].Points && key.before(worst)) {
			worst = key
			haveWorst = true
		}
	}
	if !haveBest {
		best = weekKey{season: -1}
	}
	if !haveWorst {
		worst = weekKey{season: -1}
	}
	return best, worst
}

// fillWeekRank resolves the user's leaderboard position for one week. Rank
// is cosmetic on stats, so a store failure here leaves it at zero rather
// than failing the whole read.
func (c *Calculator) fillWeekRank(ctx context.Context, userID uuid.UUID, key weekKey, wp *types.WeekPerformance) {
	picks, err := c.store.PicksInScope(ctx, model.WeekScope(key.season, key.week))
	if err != nil {
		return
	}
	for _, e := range ranking.Build(picks) {
		if e.UserID == userID {
			wp.Rank = e.Rank
			return
		}
	}
}

// CurrentStreak walks graded picks from the most recent game backward,
// counting consecutive identical outcomes.
func CurrentStreak(graded []repository.ScopedPick) types.Streak {
	if len(graded) == 0 {
		return types.Streak{Type: types.StreakNone}
	}
	last := graded[len(graded)-1].Pick.Status
	count := 0
	for i := len(graded) - 1; i >= 0; i-- {
		if graded[i].Pick.Status != last {
			break
		}
		count++
	}
	streak := types.Streak{Count: count}
	if last == model.StatusWin {
		streak.Type = types.StreakWin
	} else {
		streak.Type = types.StreakLoss
	}
	return streak
}

// LongestStreaks makes a single forward pass over chronologically ordered
// graded picks, tracking both running streaks and their maxima.
func LongestStreaks(graded []repository.ScopedPick) (longestWin, longestLoss int) {
	runWin, runLoss := 0, 0
	for _, sp := range graded {
		if sp.Pick.Status == model.StatusWin {
			runWin++
			runLoss = 0
		} else {
			runLoss++
			runWin = 0
		}
		if runWin > longestWin {
			longestWin = runWin
		}
		if runLoss > longestLoss {
			longestLoss = runLoss
		}
	}
	return longestWin, longestLoss
}
