package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/touchline/pickscore/internal/domain/model"
)

// MemStore is an in-memory Store used by tests and local development. All
// methods copy on the way in and out so callers never share mutable state
// with the store.
type MemStore struct {
	mu         sync.RWMutex
	games      map[uuid.UUID]*model.Game
	picks      map[uuid.UUID]*model.Pick
	aggregates map[uuid.UUID]*model.UserAggregate
	profiles   map[uuid.UUID]model.UserProfile

	// failCommit injects a CommitGrade error for specific picks, used to
	// exercise partial-failure isolation.
	failCommit map[uuid.UUID]error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		games:      make(map[uuid.UUID]*model.Game),
		picks:      make(map[uuid.UUID]*model.Pick),
		aggregates: make(map[uuid.UUID]*model.UserAggregate),
		profiles:   make(map[uuid.UUID]model.UserProfile),
		failCommit: make(map[uuid.UUID]error),
	}
}

// PutGame seeds or replaces a game.
func (m *MemStore) PutGame(g *model.Game) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = copyGame(g)
}

// PutPick seeds or replaces a pick, creating the owner's aggregate and a
// placeholder profile when missing.
func (m *MemStore) PutPick(p *model.Pick) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.picks[p.ID] = copyPick(p)
	if _, ok := m.aggregates[p.UserID]; !ok {
		m.aggregates[p.UserID] = &model.UserAggregate{UserID: p.UserID}
	}
	if _, ok := m.profiles[p.UserID]; !ok {
		m.profiles[p.UserID] = model.UserProfile{UserID: p.UserID, Username: p.UserID.String()[:8]}
	}
}

// PutProfile seeds a user's display fields.
func (m *MemStore) PutProfile(p model.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
	if _, ok := m.aggregates[p.UserID]; !ok {
		m.aggregates[p.UserID] = &model.UserAggregate{UserID: p.UserID}
	}
}

// FailCommitFor makes CommitGrade fail for the given pick until cleared.
func (m *MemStore) FailCommitFor(pickID uuid.UUID, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failCommit, pickID)
		return
	}
	m.failCommit[pickID] = err
}

// Game implements Store.
func (m *MemStore) Game(_ context.Context, id uuid.UUID) (*model.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return copyGame(g), nil
}

// MarkGameScored implements Store.
func (m *MemStore) MarkGameScored(_ context.Context, id uuid.UUID, first model.PlayerID, scorers []model.PlayerID, manual bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return ErrGameNotFound
	}
	g.MarkScored(first, append([]model.PlayerID(nil), scorers...), manual, at)
	g.Completed = true
	return nil
}

// GamesInScope implements Store.
func (m *MemStore) GamesInScope(_ context.Context, scope model.Scope) ([]*model.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Game
	for _, g := range m.games {
		if scope.Contains(g.Season, g.Week) {
			out = append(out, copyGame(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kickoff.Before(out[j].Kickoff) })
	return out, nil
}

// Pick implements Store.
func (m *MemStore) Pick(_ context.Context, id uuid.UUID) (*model.Pick, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.picks[id]
	if !ok {
		return nil, ErrPickNotFound
	}
	return copyPick(p), nil
}

// PendingPicksByGame implements Store.
func (m *MemStore) PendingPicksByGame(_ context.Context, gameID uuid.UUID) ([]*model.Pick, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Pick
	for _, p := range m.picks {
		if p.GameID == gameID && p.Status == model.StatusPending {
			out = append(out, copyPick(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

// PicksByGame implements Store.
func (m *MemStore) PicksByGame(_ context.Context, gameID uuid.UUID) ([]*model.Pick, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Pick
	for _, p := range m.picks {
		if p.GameID == gameID {
			out = append(out, copyPick(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

// PicksInScope implements Store.
func (m *MemStore) PicksInScope(_ context.Context, scope model.Scope) ([]ScopedPick, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ScopedPick
	for _, p := range m.picks {
		g, ok := m.games[p.GameID]
		if !ok || !scope.Contains(g.Season, g.Week) {
			continue
		}
		out = append(out, ScopedPick{Pick: copyPick(p), Season: g.Season, Week: g.Week, Kickoff: g.Kickoff})
	}
	sortScoped(out)
	return out, nil
}

// PicksByUser implements Store.
func (m *MemStore) PicksByUser(_ context.Context, userID uuid.UUID, scope *model.Scope) ([]ScopedPick, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ScopedPick
	for _, p := range m.picks {
		if p.UserID != userID {
			continue
		}
		g, ok := m.games[p.GameID]
		if !ok {
			continue
		}
		if scope != nil && !scope.Contains(g.Season, g.Week) {
			continue
		}
		out = append(out, ScopedPick{Pick: copyPick(p), Season: g.Season, Week: g.Week, Kickoff: g.Kickoff})
	}
	sortScoped(out)
	return out, nil
}

// CommitGrade implements Store. The pick write and the aggregate delta land
// under one lock, which mirrors the per-pick transaction of the SQL store.
func (m *MemStore) CommitGrade(_ context.Context, pick *model.Pick, delta model.ScoreDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failCommit[pick.ID]; ok {
		return err
	}
	if _, ok := m.picks[pick.ID]; !ok {
		return ErrPickNotFound
	}
	agg, ok := m.aggregates[pick.UserID]
	if !ok {
		return ErrUserNotFound
	}
	m.picks[pick.ID] = copyPick(pick)
	agg.Apply(delta)
	return nil
}

// UserAggregate implements Store.
func (m *MemStore) UserAggregate(_ context.Context, userID uuid.UUID) (*model.UserAggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	agg, ok := m.aggregates[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *agg
	return &cp, nil
}

// UserProfiles implements Store.
func (m *MemStore) UserProfiles(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uuid.UUID]model.UserProfile, len(ids))
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func sortScoped(picks []ScopedPick) {
	sort.Slice(picks, func(i, j int) bool {
		if !picks[i].Kickoff.Equal(picks[j].Kickoff) {
			return picks[i].Kickoff.Before(picks[j].Kickoff)
		}
		return picks[i].Pick.SubmittedAt.Before(picks[j].Pick.SubmittedAt)
	})
}

func copyGame(g *model.Game) *model.Game {
	cp := *g
	cp.Scorers = append([]model.PlayerID(nil), g.Scorers...)
	return &cp
}

func copyPick(p *model.Pick) *model.Pick {
	cp := *p
	return &cp
}
