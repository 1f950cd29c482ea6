package model

import (
	"errors"
	"fmt"
)

// Week bounds. Week 0 means the whole season; regular season plus
// postseason never exceeds maxWeek.
const maxWeek = 25

// ErrInvalidScope signals a malformed season/week pair.
var ErrInvalidScope = errors.New("invalid scope")

// Scope is a season, or a (season, week) pair when Week > 0. Rankings,
// stats, and cache keys are all addressed by scope.
type Scope struct {
	Season int `json:"season"`
	Week   int `json:"week,omitempty"`
}

// SeasonScope addresses a whole season.
func SeasonScope(season int) Scope { return Scope{Season: season} }

// WeekScope addresses a single week of a season.
func WeekScope(season, week int) Scope { return Scope{Season: season, Week: week} }

// IsSeason reports whether the scope covers the whole season.
func (s Scope) IsSeason() bool { return s.Week == 0 }

// Contains reports whether a game in (season, week) falls inside the scope.
func (s Scope) Contains(season, week int) bool {
	if season != s.Season {
		return false
	}
	return s.IsSeason() || week == s.Week
}

// Validate checks season and week bounds.
func (s Scope) Validate() error {
	if s.Season <= 0 {
		return fmt.Errorf("%w: season %d", ErrInvalidScope, s.Season)
	}
	if s.Week < 0 || s.Week > maxWeek {
		return fmt.Errorf("%w: week %d", ErrInvalidScope, s.Week)
	}
	return nil
}

// String renders the scope for logs and cache keys, e.g. "2025" or
// "2025:w03".
func (s Scope) String() string {
	if s.IsSeason() {
		return fmt.Sprintf("%d", s.Season)
	}
	return fmt.Sprintf("%d:w%02d", s.Season, s.Week)
}
