// Package app provides the core business service that implements the
// dependencies required by the HTTP API: grading orchestration with
// synchronous cache invalidation, guarded bulk jobs, and cached reads.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/touchline/pickscore/internal/adapters/cache"
	"github.com/touchline/pickscore/internal/adapters/jobs"
	"github.com/touchline/pickscore/internal/adapters/repository"
	"github.com/touchline/pickscore/internal/domain/analytics"
	"github.com/touchline/pickscore/internal/domain/grading"
	"github.com/touchline/pickscore/internal/domain/model"
	"github.com/touchline/pickscore/internal/domain/ranking"
	"github.com/touchline/pickscore/internal/domain/types"
	"github.com/touchline/pickscore/pkg/logger"
	"github.com/touchline/pickscore/pkg/metrics"
)

// ErrJobActive signals that a bulk grading job is already running for the
// season; concurrent attempts are rejected, never queued silently.
var ErrJobActive = errors.New("grading job already active for season")

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCache sets the cache coordinator; omitting it leaves the service on
// the direct-computation path.
func WithCache(c *cache.Coordinator) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithWorkerCount bounds bulk grading parallelism.
func WithWorkerCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithClock overrides the grading time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service wires the scoring engine, calculators, cache coordinator, and
// job runner behind one surface.
type Service struct {
	store     repository.Store
	engine    *grading.Engine
	ranking   *ranking.Calculator
	analytics *analytics.Calculator
	cache     *cache.Coordinator
	runner    *jobs.Runner
	log       logger.Logger

	workerCount int
	now         func() time.Time

	guard *jobGuard
}

// New constructs a Service on top of an event store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		cache:       cache.NewCoordinator(nil),
		log:         logger.Get().Named("app"),
		workerCount: 4,
		now:         time.Now,
		guard:       newJobGuard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = grading.NewEngine(store, grading.WithClock(s.now), grading.WithLogger(s.log))
	s.ranking = ranking.NewCalculator(store)
	s.analytics = analytics.NewCalculator(store)
	s.runner = jobs.NewRunner(jobs.WithWorkerCount(s.workerCount), jobs.WithLogger(s.log))
	return s
}

// GradeGame grades one game's pending picks and synchronously invalidates
// every cache key the settled picks could have contributed to. The caller
// only sees success after invalidation completed.
func (s *Service) GradeGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	start := time.Now()
	graded, gradeErr := s.engine.Grade(ctx, gameID)
	metrics.RecordGradeDuration(time.Since(start).Seconds())

	if graded > 0 {
		if err := s.invalidateGame(ctx, gameID); err != nil {
			return graded, err
		}
	}
	return graded, gradeErr
}

// ManualGradeGame records scoring facts supplied by an operator and grades
// the game through the automated settlement path.
func (s *Service) ManualGradeGame(ctx context.Context, gameID uuid.UUID, firstScorer string, allScorers []string, actor uuid.UUID) (int, error) {
	first := model.NormalizePlayerID(firstScorer)
	scorers := model.NormalizePlayerIDs(allScorers)

	start := time.Now()
	graded, gradeErr := s.engine.ManualGrade(ctx, gameID, first, scorers, actor)
	metrics.RecordGradeDuration(time.Since(start).Seconds())
	if gradeErr != nil && graded == 0 {
		return 0, gradeErr
	}

	if err := s.invalidateGame(ctx, gameID); err != nil {
		return graded, err
	}
	return graded, gradeErr
}

// OverridePick replaces a pick's settlement and invalidates the affected
// scopes before returning.
func (s *Service) OverridePick(ctx context.Context, pickID uuid.UUID, status model.PickStatus, primary, secondary int, actor uuid.UUID) (*model.Pick, error) {
	pick, err := s.engine.ManualOverride(ctx, pickID, status, primary, secondary, actor)
	if err != nil {
		return nil, err
	}

	game, err := s.store.Game(ctx, pick.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game for invalidation: %w", err)
	}
	keys := cache.InvalidationClosure([]*model.Game{game}, []*model.Pick{pick})
	if err := s.cache.Invalidate(ctx, keys); err != nil {
		return nil, fmt.Errorf("cache invalidation failed: %w", err)
	}
	return pick, nil
}

// GradeWeek grades every completed game in the scope through the worker
// pool. Only one job may run per season at a time; a second attempt is
// rejected with ErrJobActive.
func (s *Service) GradeWeek(ctx context.Context, scope model.Scope) (*jobs.Result, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !s.guard.acquire(scope.Season) {
		metrics.RecordJobRejected()
		return nil, fmt.Errorf("%w: %d", ErrJobActive, scope.Season)
	}
	defer s.guard.release(scope.Season)
	metrics.RecordJobStarted()

	games, err := s.store.GamesInScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load games for %s: %w", scope, err)
	}

	var ids []uuid.UUID
	gradable := make([]*model.Game, 0, len(games))
	for _, g := range games {
		if g.Completed {
			ids = append(ids, g.ID)
			gradable = append(gradable, g)
		}
	}

	res := s.runner.Run(ctx, ids, s.engine.Grade)
	s.log.Info(ctx, "bulk grading finished",
		logger.String("scope", scope.String()),
		logger.Int("games", res.Games),
		logger.Int("graded", res.Graded),
		logger.Int("failures", len(res.Failures)))

	if res.Graded > 0 {
		var picks []*model.Pick
		for _, g := range gradable {
			gamePicks, err := s.store.PicksByGame(ctx, g.ID)
			if err != nil {
				return res, fmt.Errorf("failed to load picks for invalidation: %w", err)
			}
			picks = append(picks, gamePicks...)
		}
		keys := cache.InvalidationClosure(gradable, picks)
		if err := s.cache.Invalidate(ctx, keys); err != nil {
			return res, fmt.Errorf("cache invalidation failed: %w", err)
		}
	}
	return res, nil
}

// Leaderboard returns the ranked leaderboard for a scope, served from
// cache when fresh. When forUser is set, their row is surfaced as
// UserPosition on the returned (never the cached) value.
func (s *Service) Leaderboard(ctx context.Context, scope model.Scope, forUser *uuid.UUID) (*types.Leaderboard, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	raw, err := s.cache.GetOrCompute(ctx, cache.LeaderboardKey(scope), func(ctx context.Context) ([]byte, error) {
		lb, err := s.ranking.Rank(ctx, scope)
		if err != nil {
			return nil, err
		}
		return json.Marshal(lb)
	})
	if err != nil {
		return nil, err
	}

	lb := &types.Leaderboard{}
	if err := json.Unmarshal(raw, lb); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	if forUser != nil {
		for _, e := range lb.Entries {
			if e.UserID == *forUser {
				lb.UserPosition = e
				break
			}
		}
	}
	return lb, nil
}

// UserStats returns per-user analytics. Season and all-time scopes are
// cached; a week scope is computed directly because invalidation only
// tracks season-level stats keys.
func (s *Service) UserStats(ctx context.Context, userID uuid.UUID, scope *model.Scope) (*types.UserStats, error) {
	compute := func(ctx context.Context) ([]byte, error) {
		stats, err := s.analytics.Stats(ctx, userID, scope)
		if err != nil {
			return nil, err
		}
		metrics.RecordStatsCompute()
		return json.Marshal(stats)
	}

	var raw []byte
	var err error
	if scope != nil && !scope.IsSeason() {
		raw, err = compute(ctx)
	} else {
		raw, err = s.cache.GetOrCompute(ctx, cache.StatsKey(userID, scope), compute)
	}
	if err != nil {
		return nil, err
	}

	stats := &types.UserStats{}
	if err := json.Unmarshal(raw, stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return stats, nil
}

// invalidateGame deletes the key closure for one graded game.
func (s *Service) invalidateGame(ctx context.Context, gameID uuid.UUID) error {
	game, err := s.store.Game(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to load game for invalidation: %w", err)
	}
	picks, err := s.store.PicksByGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to load picks for invalidation: %w", err)
	}
	keys := cache.InvalidationClosure([]*model.Game{game}, picks)
	if err := s.cache.Invalidate(ctx, keys); err != nil {
		return fmt.Errorf("cache invalidation failed: %w", err)
	}
	return nil
}
