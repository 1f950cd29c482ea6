// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// PickStatus is the settlement state of a pick.
type PickStatus string

// Pick settlement states.
const (
	StatusPending PickStatus = "pending"
	StatusWin     PickStatus = "win"
	StatusLoss    PickStatus = "loss"
	StatusVoid    PickStatus = "void"
)

// Graded reports whether the pick has a win/loss outcome. Void picks are
// settled but carry no outcome and are excluded from aggregation.
func (s PickStatus) Graded() bool {
	return s == StatusWin || s == StatusLoss
}

// Valid reports whether s is one of the known settlement states.
func (s PickStatus) Valid() bool {
	switch s {
	case StatusPending, StatusWin, StatusLoss, StatusVoid:
		return true
	}
	return false
}

// Pick is a user's first/any touchdown scorer selection for one game.
type Pick struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	GameID          uuid.UUID  `json:"game_id"`
	Selected        PlayerID   `json:"selected_player_id"`
	Status          PickStatus `json:"status"`
	PrimaryPoints   int        `json:"primary_points"`
	SecondaryPoints int        `json:"secondary_points"`
	TotalPoints     int        `json:"total_points"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ScoredAt        *time.Time `json:"scored_at,omitempty"`
	SettledAt       *time.Time `json:"settled_at,omitempty"`
	ManualOverride  bool       `json:"is_manual_override"`
	OverrideBy      *uuid.UUID `json:"override_by,omitempty"`
	OverrideAt      *time.Time `json:"override_at,omitempty"`
}

// SetScore applies an outcome to the pick. It is the only mutation path for
// score fields, which keeps the TotalPoints = primary + secondary invariant
// in one place.
func (p *Pick) SetScore(status PickStatus, primary, secondary int, at time.Time) {
	p.Status = status
	p.PrimaryPoints = primary
	p.SecondaryPoints = secondary
	p.TotalPoints = primary + secondary
	ts := at
	p.ScoredAt = &ts
	p.SettledAt = &ts
}

// MarkOverridden stamps the manual-override audit fields.
func (p *Pick) MarkOverridden(actor uuid.UUID, at time.Time) {
	p.ManualOverride = true
	p.OverrideBy = &actor
	ts := at
	p.OverrideAt = &ts
}

// Contribution is the delta this pick currently adds to its owner's
// aggregate. Overrides subtract the old contribution and apply the new one,
// so forward and reverse accounting share this single definition.
func (p *Pick) Contribution() ScoreDelta {
	switch p.Status {
	case StatusWin:
		return ScoreDelta{Score: p.TotalPoints, Wins: 1}
	case StatusLoss:
		return ScoreDelta{Losses: 1}
	default:
		return ScoreDelta{}
	}
}

// ScoreDelta is a signed adjustment to a user aggregate.
type ScoreDelta struct {
	Score  int
	Wins   int
	Losses int
}

// Invert returns the delta that undoes d.
func (d ScoreDelta) Invert() ScoreDelta {
	return ScoreDelta{Score: -d.Score, Wins: -d.Wins, Losses: -d.Losses}
}

// Add returns the sum of d and other.
func (d ScoreDelta) Add(other ScoreDelta) ScoreDelta {
	return ScoreDelta{
		Score:  d.Score + other.Score,
		Wins:   d.Wins + other.Wins,
		Losses: d.Losses + other.Losses,
	}
}

// IsZero reports whether the delta changes nothing.
func (d ScoreDelta) IsZero() bool { return d == ScoreDelta{} }

// UserAggregate is the running per-user score kept by the event store.
type UserAggregate struct {
	UserID      uuid.UUID `json:"user_id"`
	TotalScore  int       `json:"total_score"`
	TotalWins   int       `json:"total_wins"`
	TotalLosses int       `json:"total_losses"`
}

// Apply folds a signed delta into the aggregate.
func (a *UserAggregate) Apply(d ScoreDelta) {
	a.TotalScore += d.Score
	a.TotalWins += d.Wins
	a.TotalLosses += d.Losses
}
