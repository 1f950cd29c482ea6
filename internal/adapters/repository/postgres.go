package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/touchline/pickscore/internal/domain/model"
)

// PGStore is the postgres-backed Store used in production.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore wraps a pgx connection pool.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const gameColumns = `id, season, week, home_team, away_team, kickoff, completed, first_scorer_id, scorer_ids, scored_at, is_manually_scored`

func scanGame(row pgx.Row) (*model.Game, error) {
	g := &model.Game{}
	var first *string
	var scorers []string
	err := row.Scan(
		&g.ID,
		&g.Season,
		&g.Week,
		&g.HomeTeam,
		&g.AwayTeam,
		&g.Kickoff,
		&g.Completed,
		&first,
		&scorers,
		&g.ScoredAt,
		&g.ManuallyScored,
	)
	if err != nil {
		return nil, err
	}
	if first != nil {
		g.FirstScorer = model.NormalizePlayerID(*first)
	}
	g.Scorers = model.NormalizePlayerIDs(scorers)
	return g, nil
}

// Game implements Store.
func (s *PGStore) Game(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	g, err := scanGame(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

// MarkGameScored implements Store.
func (s *PGStore) MarkGameScored(ctx context.Context, id uuid.UUID, first model.PlayerID, scorers []model.PlayerID, manual bool, at time.Time) error {
	query := `
	UPDATE games
	SET first_scorer_id = $2,
		scorer_ids = $3,
		scored_at = $4,
		is_manually_scored = $5,
		completed = true
	WHERE id = $1
	`

	ids := make([]string, len(scorers))
	for i, sc := range scorers {
		ids[i] = string(sc)
	}

	result, err := s.db.Exec(ctx, query, id, string(first), ids, at, manual)
	if err != nil {
		return fmt.Errorf("failed to mark game scored: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrGameNotFound
	}
	return nil
}

// GamesInScope implements Store.
func (s *PGStore) GamesInScope(ctx context.Context, scope model.Scope) ([]*model.Game, error) {
	query := `
	SELECT ` + gameColumns + `
	FROM games
	WHERE season = $1 AND ($2 = 0 OR week = $2)
	ORDER BY kickoff ASC
	`

	rows, err := s.db.Query(ctx, query, scope.Season, scope.Week)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch games: %w", err)
	}
	defer rows.Close()

	var games []*model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}
	return games, nil
}

const pickColumns = `id, user_id, game_id, selected_player_id, status, primary_points, secondary_points, total_points, submitted_at, scored_at, settled_at, is_manual_override, override_by, override_at`

func scanPick(row pgx.Row) (*model.Pick, error) {
	p := &model.Pick{}
	var selected string
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.GameID,
		&selected,
		&p.Status,
		&p.PrimaryPoints,
		&p.SecondaryPoints,
		&p.TotalPoints,
		&p.SubmittedAt,
		&p.ScoredAt,
		&p.SettledAt,
		&p.ManualOverride,
		&p.OverrideBy,
		&p.OverrideAt,
	)
	if err != nil {
		return nil, err
	}
	p.Selected = model.NormalizePlayerID(selected)
	return p, nil
}

// Pick implements Store.
func (s *PGStore) Pick(ctx context.Context, id uuid.UUID) (*model.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks WHERE id = $1`

	p, err := scanPick(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPickNotFound
		}
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}
	return p, nil
}

// PendingPicksByGame implements Store.
func (s *PGStore) PendingPicksByGame(ctx context.Context, gameID uuid.UUID) ([]*model.Pick, error) {
	query := `
	SELECT ` + pickColumns + `
	FROM picks
	WHERE game_id = $1 AND status = 'pending'
	ORDER BY submitted_at ASC
	`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending picks: %w", err)
	}
	defer rows.Close()

	var picks []*model.Pick
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		picks = append(picks, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating picks: %w", err)
	}
	return picks, nil
}

// PicksByGame implements Store.
func (s *PGStore) PicksByGame(ctx context.Context, gameID uuid.UUID) ([]*model.Pick, error) {
	query := `
	SELECT ` + pickColumns + `
	FROM picks
	WHERE game_id = $1
	ORDER BY submitted_at ASC
	`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch picks: %w", err)
	}
	defer rows.Close()

	var picks []*model.Pick
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		picks = append(picks, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating picks: %w", err)
	}
	return picks, nil
}

func (s *PGStore) scopedPicks(ctx context.Context, query string, args ...any) ([]ScopedPick, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch picks: %w", err)
	}
	defer rows.Close()

	var picks []ScopedPick
	for rows.Next() {
		p := &model.Pick{}
		sp := ScopedPick{Pick: p}
		var selected string
		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.GameID,
			&selected,
			&p.Status,
			&p.PrimaryPoints,
			&p.SecondaryPoints,
			&p.TotalPoints,
			&p.SubmittedAt,
			&p.ScoredAt,
			&p.SettledAt,
			&p.ManualOverride,
			&p.OverrideBy,
			&p.OverrideAt,
			&sp.Season,
			&sp.Week,
			&sp.Kickoff,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		p.Selected = model.NormalizePlayerID(selected)
		picks = append(picks, sp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating picks: %w", err)
	}
	return picks, nil
}

const scopedPickColumns = `p.id, p.user_id, p.game_id, p.selected_player_id, p.status, p.primary_points, p.secondary_points, p.total_points, p.submitted_at, p.scored_at, p.settled_at, p.is_manual_override, p.override_by, p.override_at, g.season, g.week, g.kickoff`

// PicksInScope implements Store.
func (s *PGStore) PicksInScope(ctx context.Context, scope model.Scope) ([]ScopedPick, error) {
	query := `
	SELECT ` + scopedPickColumns + `
	FROM picks p
	INNER JOIN games g ON g.id = p.game_id
	WHERE g.season = $1 AND ($2 = 0 OR g.week = $2)
	ORDER BY g.kickoff ASC, p.submitted_at ASC
	`
	return s.scopedPicks(ctx, query, scope.Season, scope.Week)
}

// PicksByUser implements Store.
func (s *PGStore) PicksByUser(ctx context.Context, userID uuid.UUID, scope *model.Scope) ([]ScopedPick, error) {
	if scope == nil {
		query := `
		SELECT ` + scopedPickColumns + `
		FROM picks p
		INNER JOIN games g ON g.id = p.game_id
		WHERE p.user_id = $1
		ORDER BY g.kickoff ASC, p.submitted_at ASC
		`
		return s.scopedPicks(ctx, query, userID)
	}

	query := `
	SELECT ` + scopedPickColumns + `
	FROM picks p
	INNER JOIN games g ON g.id = p.game_id
	WHERE p.user_id = $1 AND g.season = $2 AND ($3 = 0 OR g.week = $3)
	ORDER BY g.kickoff ASC, p.submitted_at ASC
	`
	return s.scopedPicks(ctx, query, userID, scope.Season, scope.Week)
}

// CommitGrade implements Store. The pick row and the owner's aggregate move
// together inside one transaction; rollback leaves both untouched.
func (s *PGStore) CommitGrade(ctx context.Context, pick *model.Pick, delta model.ScoreDelta) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin grade transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	query := `
	UPDATE picks
	SET status = $2,
		primary_points = $3,
		secondary_points = $4,
		total_points = $5,
		scored_at = $6,
		settled_at = $7,
		is_manual_override = $8,
		override_by = $9,
		override_at = $10
	WHERE id = $1
	`

	result, err := tx.Exec(ctx, query,
		pick.ID,
		pick.Status,
		pick.PrimaryPoints,
		pick.SecondaryPoints,
		pick.TotalPoints,
		pick.ScoredAt,
		pick.SettledAt,
		pick.ManualOverride,
		pick.OverrideBy,
		pick.OverrideAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update pick: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPickNotFound
	}

	if !delta.IsZero() {
		aggQuery := `
		INSERT INTO user_aggregates (user_id, total_score, total_wins, total_losses)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET
			total_score = user_aggregates.total_score + $2,
			total_wins = user_aggregates.total_wins + $3,
			total_losses = user_aggregates.total_losses + $4
		`
		if _, err := tx.Exec(ctx, aggQuery, pick.UserID, delta.Score, delta.Wins, delta.Losses); err != nil {
			return fmt.Errorf("failed to apply aggregate delta: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit grade: %w", err)
	}
	return nil
}

// UserAggregate implements Store.
func (s *PGStore) UserAggregate(ctx context.Context, userID uuid.UUID) (*model.UserAggregate, error) {
	query := `
	SELECT user_id, total_score, total_wins, total_losses
	FROM user_aggregates
	WHERE user_id = $1
	`

	agg := &model.UserAggregate{}
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&agg.UserID,
		&agg.TotalScore,
		&agg.TotalWins,
		&agg.TotalLosses,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user aggregate: %w", err)
	}
	return agg, nil
}

// UserProfiles implements Store.
func (s *PGStore) UserProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserProfile, error) {
	query := `
	SELECT id, username, image_url
	FROM users
	WHERE id = ANY($1)
	`

	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user profiles: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]model.UserProfile, len(ids))
	for rows.Next() {
		var p model.UserProfile
		if err := rows.Scan(&p.UserID, &p.Username, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan user profile: %w", err)
		}
		out[p.UserID] = p
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user profiles: %w", err)
	}
	return out, nil
}
