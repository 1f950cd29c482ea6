// Package ranking aggregates graded picks into ordered, tie-broken
// leaderboards for a season or a single week.
package ranking

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/touchline/pickscore/internal/adapters/repository"
	"github.com/touchline/pickscore/internal/domain/model"
	"github.com/touchline/pickscore/internal/domain/types"
	"github.com/touchline/pickscore/pkg/metrics"
)

// Calculator computes leaderboards from the event store.
type Calculator struct {
	store repository.Store
}

// NewCalculator creates a ranking calculator backed by the given store.
func NewCalculator(store repository.Store) *Calculator {
	return &Calculator{store: store}
}

// Rank returns the full leaderboard for a scope. Only win/loss picks
// contribute to totals; pending picks surface in pending_count and void
// picks are ignored.
func (c *Calculator) Rank(ctx context.Context, scope model.Scope) (*types.Leaderboard, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	picks, err := c.store.PicksInScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks for %s: %w", scope, err)
	}

	entries := Build(picks)

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	profiles, err := c.store.UserProfiles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load user profiles: %w", err)
	}
	for _, e := range entries {
		if p, ok := profiles[e.UserID]; ok {
			e.Username = p.Username
			e.ImageURL = p.ImageURL
		}
	}

	metrics.RecordLeaderboardCompute()
	return &types.Leaderboard{
		Scope:      scope,
		Entries:    entries,
		TotalUsers: len(entries),
	}, nil
}

// Build aggregates picks into ranked entries. It is deterministic for a
// given pick set and applies the same rules to week and season scopes, so a
// week computed alone ranks identically to the same week inside a season.
func Build(picks []repository.ScopedPick) []*types.Entry {
	byUser := make(map[uuid.UUID]*types.Entry)
	for _, sp := range picks {
		p := sp.Pick
		e, ok := byUser[p.UserID]
		if !ok {
			e = &types.Entry{UserID: p.UserID}
			byUser[p.UserID] = e
		}
		switch p.Status {
		case model.StatusWin:
			e.Wins++
			e.TotalPoints += p.TotalPoints
			e.PrimaryPoints += p.PrimaryPoints
			e.SecondaryPoints += p.SecondaryPoints
		case model.StatusLoss:
			e.Losses++
		case model.StatusPending:
			e.PendingCount++
		case model.StatusVoid:
			// void picks contribute nothing
		}
	}

	entries := make([]*types.Entry, 0, len(byUser))
	for _, e := range byUser {
		e.WinPercentage = WinPercentage(e.Wins, e.Losses)
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		// Tied entries share a rank; order inside the tie block is pinned
		// by user id so repeated computations agree byte for byte.
		return a.UserID.String() < b.UserID.String()
	})

	assignRanks(entries)
	return entries
}

// assignRanks applies competition ranking: exact (points, wins) ties share
// a rank, and the next distinct tuple takes its 1-based position, skipping
// past the tie block.
func assignRanks(entries []*types.Entry) {
	for i, e := range entries {
		if i > 0 && sameKey(e, entries[i-1]) {
			e.Rank = entries[i-1].Rank
		} else {
			e.Rank = i + 1
		}
	}
	for i, e := range entries {
		prev := i > 0 && entries[i-1].Rank == e.Rank
		next := i+1 < len(entries) && entries[i+1].Rank == e.Rank
		e.IsTied = prev || next
	}
}

func sameKey(a, b *types.Entry) bool {
	return a.TotalPoints == b.TotalPoints && a.Wins == b.Wins
}

// WinPercentage is wins over graded picks as a percentage, rounded to two
// decimals; 0.0 when nothing is graded.
func WinPercentage(wins, losses int) float64 {
	graded := wins + losses
	if graded == 0 {
		return 0.0
	}
	return math.Round(float64(wins)/float64(graded)*100*100) / 100
}
