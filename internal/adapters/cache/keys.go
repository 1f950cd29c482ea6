package cache

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/touchline/pickscore/internal/domain/model"
)

// Key namespaces. Bumping a prefix version orphans old entries instead of
// serving stale shapes after a schema change.
const (
	leaderboardPrefix = "lb:v1"
	statsPrefix       = "stats:v1"
)

// LeaderboardKey addresses the ranked leaderboard for a scope.
func LeaderboardKey(scope model.Scope) string {
	return fmt.Sprintf("%s:%s", leaderboardPrefix, scope)
}

// StatsKey addresses a user's stats; a nil scope means all-time.
func StatsKey(userID uuid.UUID, scope *model.Scope) string {
	if scope == nil {
		return fmt.Sprintf("%s:%s:all", statsPrefix, userID)
	}
	return fmt.Sprintf("%s:%s:%d", statsPrefix, userID, scope.Season)
}

// InvalidationClosure derives every key that could contain a contribution
// from the given graded games and their picks: the season leaderboard, each
// affected week leaderboard, and each affected user's stats both
// season-scoped and all-time.
func InvalidationClosure(games []*model.Game, picks []*model.Pick) []string {
	seen := make(map[string]struct{})
	var keys []string
	add := func(k string) {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}

	seasons := make(map[uuid.UUID]int, len(games))
	for _, g := range games {
		add(LeaderboardKey(model.SeasonScope(g.Season)))
		add(LeaderboardKey(g.Scope()))
		seasons[g.ID] = g.Season
	}
	for _, p := range picks {
		season, ok := seasons[p.GameID]
		if !ok {
			continue
		}
		scope := model.SeasonScope(season)
		add(StatsKey(p.UserID, &scope))
		add(StatsKey(p.UserID, nil))
	}
	return keys
}
