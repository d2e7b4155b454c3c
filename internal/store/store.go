// internal/store/store.go
//
// Persistence contract for game sessions.
//
// Concurrency model:
//   - Every stored game carries a Version. Create stores version 1.
//   - Update only succeeds when the caller's game.Version equals the stored
//     one; the stored version is then bumped. A stale write gets ErrConflict,
//     so two racing guesses on the same game can never both commit.
//   - Get after Create/Update always observes that write.

package store

import (
	"context"
	"errors"

	"github.com/robalobadob/hangman/internal/game"
)

var (
	// ErrNotFound is returned when no game has the requested id.
	ErrNotFound = errors.New("store: game not found")

	// ErrConflict is returned when an update was based on a stale version.
	ErrConflict = errors.New("store: game was modified concurrently")
)

// Store defines the persistence interface for game sessions.
// Implementations are backed by memory (memory.go) or SQLite (sqlite.go).
type Store interface {
	// Get retrieves a game by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (game.Game, error)

	// List returns every game, oldest first.
	List(ctx context.Context) ([]game.Game, error)

	// Create persists a new game and returns it with version and timestamps set.
	Create(ctx context.Context, g game.Game) (game.Game, error)

	// Update replaces a game if g.Version is current and returns the stored copy.
	Update(ctx context.Context, g game.Game) (game.Game, error)

	// Delete removes a game. Deleting a missing game is not an error.
	Delete(ctx context.Context, id string) error
}
