// Package types contains derived read shapes shared across the application.
package types

import (
	"github.com/google/uuid"

	"github.com/touchline/pickscore/internal/domain/model"
)

// Entry is one leaderboard row. Entries are recomputed on demand and never
// mutated in place.
type Entry struct {
	Rank            int       `json:"rank"`
	UserID          uuid.UUID `json:"user_id"`
	Username        string    `json:"username"`
	ImageURL        *string   `json:"image_url,omitempty"`
	TotalPoints     int       `json:"total_points"`
	PrimaryPoints   int       `json:"primary_points"`
	SecondaryPoints int       `json:"secondary_points"`
	Wins            int       `json:"wins"`
	Losses          int       `json:"losses"`
	PendingCount    int       `json:"pending_count"`
	WinPercentage   float64   `json:"win_percentage"`
	IsTied          bool      `json:"is_tied"`
}

// Leaderboard is the ranked result for one scope.
type Leaderboard struct {
	Scope        model.Scope `json:"scope"`
	Entries      []*Entry    `json:"entries"`
	UserPosition *Entry      `json:"user_position,omitempty"`
	TotalUsers   int         `json:"total_users"`
}

// StreakType classifies a run of identical outcomes.
type StreakType string

// Streak classifications.
const (
	StreakWin  StreakType = "win"
	StreakLoss StreakType = "loss"
	StreakNone StreakType = "none"
)

// Streak is a run of consecutive identical pick outcomes.
type Streak struct {
	Type  StreakType `json:"type"`
	Count int        `json:"count"`
}

// WeekPerformance summarizes one week of a user's picks.
type WeekPerformance struct {
	Week   int `json:"week"`
	Points int `json:"points"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Rank   int `json:"rank,omitempty"`
}

// CategorySplit is the win/points breakdown for one hit category.
type CategorySplit struct {
	Hits   int `json:"hits"`
	Points int `json:"points"`
}

// UserStats is the per-user performance summary.
type UserStats struct {
	UserID            uuid.UUID        `json:"user_id"`
	Scope             *model.Scope     `json:"scope,omitempty"`
	TotalPoints       int              `json:"total_points"`
	Wins              int              `json:"wins"`
	Losses            int              `json:"losses"`
	PendingCount      int              `json:"pending_count"`
	WinPercentage     float64          `json:"win_percentage"`
	FirstScorerHits   CategorySplit    `json:"first_scorer_hits"`
	AnyScorerHits     CategorySplit    `json:"any_scorer_hits"`
	BestWeek          *WeekPerformance `json:"best_week,omitempty"`
	WorstWeek         *WeekPerformance `json:"worst_week,omitempty"`
	CurrentStreak     Streak           `json:"current_streak"`
	LongestWinStreak  int              `json:"longest_win_streak"`
	LongestLossStreak int              `json:"longest_loss_streak"`
}
