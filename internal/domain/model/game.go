package model

import (
	"time"

	"github.com/google/uuid"
)

// Game is a real-world contest whose touchdown scorers settle picks against
// it. Scoring facts (first scorer, full scorer list) arrive from the import
// pipeline or from a manual grading call.
type Game struct {
	ID             uuid.UUID  `json:"id"`
	Season         int        `json:"season"`
	Week           int        `json:"week"`
	HomeTeam       string     `json:"home_team"`
	AwayTeam       string     `json:"away_team"`
	Kickoff        time.Time  `json:"kickoff"`
	Completed      bool       `json:"completed"`
	FirstScorer    PlayerID   `json:"first_scorer_id,omitempty"`
	Scorers        []PlayerID `json:"scorer_ids,omitempty"`
	ScoredAt       *time.Time `json:"scored_at,omitempty"`
	ManuallyScored bool       `json:"is_manually_scored"`
}

// Scope returns the (season, week) scope the game belongs to.
func (g *Game) Scope() Scope { return Scope{Season: g.Season, Week: g.Week} }

// ScorerSet returns the distinct scorers. Repeat scorers appear once, which
// is what keeps secondary points from multiplying on multi-touchdown games.
func (g *Game) ScorerSet() map[PlayerID]struct{} {
	set := make(map[PlayerID]struct{}, len(g.Scorers))
	for _, s := range g.Scorers {
		set[s] = struct{}{}
	}
	return set
}

// MarkScored records the scoring facts on the game.
func (g *Game) MarkScored(first PlayerID, scorers []PlayerID, manual bool, at time.Time) {
	g.FirstScorer = first
	g.Scorers = scorers
	g.ManuallyScored = manual
	ts := at
	g.ScoredAt = &ts
}

// UserProfile carries the display fields a leaderboard row needs.
type UserProfile struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	ImageURL *string   `json:"image_url,omitempty"`
}
