// internal/game/types.go
//
// Core type definitions for the Hangman game engine.
// Defines:
//   - State: lifecycle of a game (started → won/lost).
//   - Game: one play-through record.
//   - View: the JSON projection handed to clients.
//   - ValidationError: malformed input to New/Guess.

package game

import (
	"fmt"
	"time"
)

// State is the lifecycle position of a game.
type State string

const (
	StateStarted State = "STARTED"
	StateWon     State = "WON"
	StateLost    State = "LOST"
)

// Terminal reports whether no further guesses can change the game.
func (s State) Terminal() bool { return s == StateWon || s == StateLost }

const (
	// Placeholder marks an unrevealed position in LettersMatched.
	Placeholder = '_'

	// DefaultGuesses is the wrong-guess budget for a new game.
	DefaultGuesses = 6
)

// Game holds the state of a single Hangman game.
type Game struct {
	ID               string // Unique game identifier (UUID).
	Word             string // The secret word; never changes.
	LettersGuessed   string // Distinct guessed letters, in guess order.
	LettersMatched   string // Word with unrevealed positions as Placeholder.
	RemainingGuesses int    // Wrong guesses left before the game is lost.
	State            State

	// Store metadata. The engine copies these through untouched.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// View is what clients see of a game. Word is only set once the game is over.
type View struct {
	ID               string    `json:"id"`
	Word             string    `json:"word,omitempty"`
	LettersGuessed   string    `json:"lettersGuessed"`
	LettersMatched   string    `json:"lettersMatched"`
	RemainingGuesses int       `json:"remainingGuesses"`
	State            State     `json:"state"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// View projects g for clients, hiding the word while the game is in play.
func (g Game) View() View {
	v := View{
		ID:               g.ID,
		LettersGuessed:   g.LettersGuessed,
		LettersMatched:   g.LettersMatched,
		RemainingGuesses: g.RemainingGuesses,
		State:            g.State,
		CreatedAt:        g.CreatedAt,
		UpdatedAt:        g.UpdatedAt,
	}
	if g.State.Terminal() {
		v.Word = g.Word
	}
	return v
}

// ValidationError reports malformed input to New or Guess.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
