// Package repository defines the event store boundary and its
// implementations. The core reads games and picks and commits grading
// results through this interface; persistence mechanics stay behind it.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/touchline/pickscore/internal/domain/model"
)

// ScopedPick pairs a pick with the game facts aggregation needs: the week
// it belongs to and the real-world kickoff used for chronological ordering.
type ScopedPick struct {
	Pick    *model.Pick
	Season  int
	Week    int
	Kickoff time.Time
}

// Store provides read/write access to games, picks, and user aggregates.
//
// CommitGrade must persist the pick mutation and the owner's aggregate
// delta atomically, at pick granularity: a failure commits nothing for that
// pick and must not affect other picks of the same game.
type Store interface {
	// Game returns a game by id, or ErrGameNotFound.
	Game(ctx context.Context, id uuid.UUID) (*model.Game, error)

	// MarkGameScored records scoring facts on a game.
	MarkGameScored(ctx context.Context, id uuid.UUID, first model.PlayerID, scorers []model.PlayerID, manual bool, at time.Time) error

	// GamesInScope returns the games of a season or week, kickoff ascending.
	GamesInScope(ctx context.Context, scope model.Scope) ([]*model.Game, error)

	// Pick returns a pick by id, or ErrPickNotFound.
	Pick(ctx context.Context, id uuid.UUID) (*model.Pick, error)

	// PendingPicksByGame returns the still-pending picks for one game.
	PendingPicksByGame(ctx context.Context, gameID uuid.UUID) ([]*model.Pick, error)

	// PicksByGame returns every pick for one game regardless of status.
	PicksByGame(ctx context.Context, gameID uuid.UUID) ([]*model.Pick, error)

	// PicksInScope returns every pick whose game falls in scope.
	PicksInScope(ctx context.Context, scope model.Scope) ([]ScopedPick, error)

	// PicksByUser returns one user's picks, all-time when scope is nil,
	// ordered by game kickoff ascending.
	PicksByUser(ctx context.Context, userID uuid.UUID, scope *model.Scope) ([]ScopedPick, error)

	// CommitGrade persists a graded pick together with the signed aggregate
	// delta for its owner, in one transaction.
	CommitGrade(ctx context.Context, pick *model.Pick, delta model.ScoreDelta) error

	// UserAggregate returns the running totals for a user, or
	// ErrUserNotFound.
	UserAggregate(ctx context.Context, userID uuid.UUID) (*model.UserAggregate, error)

	// UserProfiles returns display fields for the given users. Unknown ids
	// are simply absent from the result.
	UserProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserProfile, error)
}
