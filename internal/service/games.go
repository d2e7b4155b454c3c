// internal/service/games.go
//
// Game use cases on top of the engine, the Game Store and the Word Source.
// Responsibilities:
//   - Create: fetch a word, build a game, persist it.
//   - Guess:  read → apply one engine transition → write back, retrying when
//             another guess on the same game committed first.
//   - Get/List/Delete: straight delegation to the store.
//   - Notify watchers of every committed game.
//
// Transport concerns (status codes, JSON) live in httpserver.

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

// ErrWordUnavailable wraps any Word Source failure during Create.
var ErrWordUnavailable = errors.New("word source unavailable")

// maxGuessAttempts bounds re-reads after a version conflict.
const maxGuessAttempts = 3

// Notifier receives every game after it has been committed.
type Notifier interface {
	Publish(g game.Game)
	Forget(gameID string)
}

// GameService runs the game flows.
type GameService struct {
	store  store.Store
	words  words.Source
	budget int
	notify Notifier
}

// New wires a GameService. notify may be nil.
func New(st store.Store, src words.Source, budget int, notify Notifier) *GameService {
	return &GameService{store: st, words: src, budget: budget, notify: notify}
}

// Create starts a new game with a word from the Word Source.
func (s *GameService) Create(ctx context.Context) (game.Game, error) {
	word, err := s.words.RandomWord(ctx)
	if err != nil {
		return game.Game{}, fmt.Errorf("%w: %w", ErrWordUnavailable, err)
	}
	g, err := game.New(word, s.budget)
	if err != nil {
		return game.Game{}, err
	}
	g, err = s.store.Create(ctx, g)
	if err != nil {
		return game.Game{}, fmt.Errorf("create game: %w", err)
	}
	log.Info().Str("gameId", g.ID).Int("length", len([]rune(g.Word))).Msg("game created")
	return g, nil
}

// Get returns one game or store.ErrNotFound.
func (s *GameService) Get(ctx context.Context, id string) (game.Game, error) {
	return s.store.Get(ctx, id)
}

// List returns all games.
func (s *GameService) List(ctx context.Context) ([]game.Game, error) {
	return s.store.List(ctx)
}

// Delete removes a game and disconnects its watchers.
func (s *GameService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.notify != nil {
		s.notify.Forget(id)
	}
	log.Info().Str("gameId", id).Msg("game deleted")
	return nil
}

// Guess applies letter to game id and returns the committed game.
//
// Letters are lowercased to match the word list. An unchanged game (finished,
// or letter already tried) is returned without a write.
func (s *GameService) Guess(ctx context.Context, id, letter string) (game.Game, error) {
	letter = strings.ToLower(letter)

	for attempt := 1; ; attempt++ {
		cur, err := s.store.Get(ctx, id)
		if err != nil {
			return game.Game{}, err
		}
		next, err := game.Guess(cur, letter)
		if err != nil {
			return game.Game{}, err
		}
		if next == cur {
			return cur, nil
		}

		saved, err := s.store.Update(ctx, next)
		if errors.Is(err, store.ErrConflict) && attempt < maxGuessAttempts {
			log.Debug().Str("gameId", id).Int("attempt", attempt).Msg("guess conflict, retrying")
			continue
		}
		if err != nil {
			return game.Game{}, err
		}

		ev := log.Debug()
		if saved.State.Terminal() {
			ev = log.Info()
		}
		ev.Str("gameId", id).
			Str("letter", letter).
			Str("state", string(saved.State)).
			Int("remaining", saved.RemainingGuesses).
			Msg("guess applied")

		if s.notify != nil {
			s.notify.Publish(saved)
		}
		return saved, nil
	}
}
