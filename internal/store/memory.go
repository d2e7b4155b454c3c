// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used for ephemeral game sessions, primarily in development/testing,
// or when durability is not required.
//
// Characteristics:
//   - Stores game.Game values keyed by ID in a map. Values, not pointers, so
//     callers can never mutate stored state behind the store's back.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robalobadob/hangman/internal/game"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex         // guards games map
	games map[string]game.Game // keyed by Game.ID
	now   func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		games: make(map[string]game.Game),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Get looks up a game by ID.
func (m *memory) Get(ctx context.Context, id string) (game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	return game.Game{}, ErrNotFound
}

// List returns a snapshot of all games ordered by creation time.
func (m *memory) List(ctx context.Context) ([]game.Game, error) {
	m.mu.RLock()
	out := make([]game.Game, 0, len(m.games))
	for _, g := range m.games {
		out = append(out, g)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Create adds a new game; an existing ID is rejected.
func (m *memory) Create(ctx context.Context, g game.Game) (game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[g.ID]; ok {
		return game.Game{}, fmt.Errorf("create game %s: %w", g.ID, ErrConflict)
	}
	now := m.now()
	g.Version = 1
	g.CreatedAt = now
	g.UpdatedAt = now
	m.games[g.ID] = g
	return g, nil
}

// Update swaps in g when its version matches the stored one.
func (m *memory) Update(ctx context.Context, g game.Game) (game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.games[g.ID]
	if !ok {
		return game.Game{}, ErrNotFound
	}
	if cur.Version != g.Version {
		return game.Game{}, ErrConflict
	}
	g.Version = cur.Version + 1
	g.CreatedAt = cur.CreatedAt
	g.UpdatedAt = m.now()
	m.games[g.ID] = g
	return g, nil
}

// Delete drops the game from the map.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}
