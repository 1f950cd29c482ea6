// Package grading settles picks against a game's touchdown scoring facts
// and keeps user aggregates in step with every settlement.
package grading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/touchline/pickscore/internal/adapters/repository"
	"github.com/touchline/pickscore/internal/domain/model"
	"github.com/touchline/pickscore/pkg/logger"
	"github.com/touchline/pickscore/pkg/metrics"
)

// Point values for the two hit categories.
const (
	PrimaryPointsValue   = 3 // predicted the first touchdown scorer
	SecondaryPointsValue = 1 // predicted any touchdown scorer
)

// Sentinel kinds for grading errors.
var (
	ErrGameNotCompleted = errors.New("game not completed")
	ErrInvalidOverride  = errors.New("invalid override")
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock overrides the time source, used by tests for deterministic
// scored_at stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine grades picks for events and applies manual corrections.
type Engine struct {
	store repository.Store
	log   logger.Logger
	now   func() time.Time
}

// NewEngine creates a grading engine backed by the given store.
func NewEngine(store repository.Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		log:   logger.Get().Named("grading"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Outcome computes the settlement for one selection against scoring facts.
// Hitting the first scorer stacks primary and secondary points; appearing
// anywhere in the scorer set is worth exactly one secondary point no matter
// how many touchdowns the player scored.
func Outcome(selected, first model.PlayerID, scorers map[model.PlayerID]struct{}) (model.PickStatus, int, int) {
	primary := 0
	if !first.Unknown() && selected == first {
		primary = PrimaryPointsValue
	}
	secondary := 0
	if _, ok := scorers[selected]; ok || primary > 0 {
		// The first scorer scored by definition, so a primary hit always
		// stacks the secondary point even if the scorer list is sparse.
		secondary = SecondaryPointsValue
	}
	if primary > 0 || secondary > 0 {
		return model.StatusWin, primary, secondary
	}
	return model.StatusLoss, 0, 0
}

// Grade settles every pending pick for the game and returns the number of
// picks graded. A failure on one pick is logged and reported but does not
// stop the rest of the batch; the failed pick stays pending. Re-invoking
// Grade on a fully graded game selects nothing and changes nothing.
func (e *Engine) Grade(ctx context.Context, gameID uuid.UUID) (int, error) {
	game, err := e.store.Game(ctx, gameID)
	if err != nil {
		return 0, err
	}
	if !game.Completed {
		return 0, fmt.Errorf("%w: %s", ErrGameNotCompleted, gameID)
	}

	pending, err := e.store.PendingPicksByGame(ctx, gameID)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending picks: %w", err)
	}

	scorers := game.ScorerSet()
	now := e.now()

	graded := 0
	var failures []error
	for _, pick := range pending {
		status, primary, secondary := Outcome(pick.Selected, game.FirstScorer, scorers)
		pick.SetScore(status, primary, secondary, now)

		if err := e.store.CommitGrade(ctx, pick, pick.Contribution()); err != nil {
			e.log.Error(ctx, "failed to grade pick",
				logger.String("pick_id", pick.ID.String()),
				logger.String("game_id", gameID.String()),
				logger.Error(err))
			metrics.RecordGradingError()
			failures = append(failures, fmt.Errorf("pick %s: %w", pick.ID, err))
			continue
		}
		graded++
		metrics.RecordPickGraded()
	}

	return graded, errors.Join(failures...)
}

// ManualGrade records scoring facts on a game and then grades it through
// the same settlement path as automated grading, so both produce identical
// per-pick results for the same facts.
func (e *Engine) ManualGrade(ctx context.Context, gameID uuid.UUID, first model.PlayerID, scorers []model.PlayerID, actor uuid.UUID) (int, error) {
	if err := e.store.MarkGameScored(ctx, gameID, first, scorers, true, e.now()); err != nil {
		return 0, err
	}
	e.log.Info(ctx, "game manually scored",
		logger.String("game_id", gameID.String()),
		logger.String("actor_id", actor.String()),
		logger.Int("scorers", len(scorers)))
	return e.Grade(ctx, gameID)
}

// ManualOverride replaces a pick's settlement regardless of its current
// status. The prior contribution is subtracted and the new one applied as a
// single signed delta inside the pick's transaction, so the aggregate can
// never double count.
func (e *Engine) ManualOverride(ctx context.Context, pickID uuid.UUID, status model.PickStatus, primary, secondary int, actor uuid.UUID) (*model.Pick, error) {
	if err := validateOverride(status, primary, secondary); err != nil {
		return nil, err
	}

	pick, err := e.store.Pick(ctx, pickID)
	if err != nil {
		return nil, err
	}

	prior := pick.Contribution()
	pick.SetScore(status, primary, secondary, e.now())
	pick.MarkOverridden(actor, e.now())
	delta := prior.Invert().Add(pick.Contribution())

	if err := e.store.CommitGrade(ctx, pick, delta); err != nil {
		return nil, fmt.Errorf("failed to commit override: %w", err)
	}

	e.log.Info(ctx, "pick overridden",
		logger.String("pick_id", pickID.String()),
		logger.String("status", string(status)),
		logger.Int("total_points", pick.TotalPoints),
		logger.String("actor_id", actor.String()))
	metrics.RecordOverride()
	return pick, nil
}

// validateOverride rejects point/status combinations that automated grading
// could never produce.
func validateOverride(status model.PickStatus, primary, secondary int) error {
	if !status.Valid() || status == model.StatusPending {
		return fmt.Errorf("%w: status %q", ErrInvalidOverride, status)
	}
	if primary != 0 && primary != PrimaryPointsValue {
		return fmt.Errorf("%w: primary points must be 0 or %d", ErrInvalidOverride, PrimaryPointsValue)
	}
	if secondary != 0 && secondary != SecondaryPointsValue {
		return fmt.Errorf("%w: secondary points must be 0 or %d", ErrInvalidOverride, SecondaryPointsValue)
	}
	win := status == model.StatusWin
	if win && primary+secondary == 0 {
		return fmt.Errorf("%w: win requires points", ErrInvalidOverride)
	}
	if !win && primary+secondary != 0 {
		return fmt.Errorf("%w: %s carries no points", ErrInvalidOverride, status)
	}
	return nil
}
