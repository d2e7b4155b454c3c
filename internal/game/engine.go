// internal/game/engine.go
//
// Core game engine for a single Hangman session.
// Responsibilities:
//   - Create new games from a secret word and a wrong-guess budget.
//   - Validate and apply letter guesses.
//   - Track state transitions: started → won/lost.
//
// Notes:
//   - Both operations work on values: Guess returns a new Game and never
//     mutates its argument. Persisting the result is the caller's job.
//   - Repeated guesses and guesses against a finished game are no-ops, so a
//     retried request never costs the player a second guess.
//   - Lengths and positions are counted in runes, not bytes.
package game

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// New constructs a started game for word with budget wrong guesses allowed.
func New(word string, budget int) (Game, error) {
	if word == "" {
		return Game{}, &ValidationError{Field: "word", Reason: "must not be empty"}
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return Game{}, &ValidationError{Field: "word", Reason: fmt.Sprintf("contains non-letter %q", r)}
		}
	}
	if budget < 1 {
		return Game{}, &ValidationError{Field: "budget", Reason: "must be at least 1"}
	}
	return Game{
		ID:               uuid.NewString(),
		Word:             word,
		LettersMatched:   strings.Repeat(string(Placeholder), utf8.RuneCountInString(word)),
		RemainingGuesses: budget,
		State:            StateStarted,
	}, nil
}

// Guess applies a single letter to g and returns the resulting game.
//
// Checks run in order, the first match wins:
//   - game already won or lost → g unchanged.
//   - letter already guessed   → g unchanged.
//   - letter not in the word   → one guess spent; lost at zero.
//   - letter in the word       → every matching position revealed; won when complete.
func Guess(g Game, letter string) (Game, error) {
	r, err := parseLetter(letter)
	if err != nil {
		return g, err
	}
	if g.State != StateStarted {
		return g, nil
	}
	if strings.ContainsRune(g.LettersGuessed, r) {
		return g, nil
	}

	next := g
	next.LettersGuessed = g.LettersGuessed + string(r)

	if !strings.ContainsRune(g.Word, r) {
		next.RemainingGuesses--
		if next.RemainingGuesses <= 0 {
			next.RemainingGuesses = 0
			next.State = StateLost
		}
		return next, nil
	}

	next.LettersMatched = reveal(g.Word, g.LettersMatched, r)
	if next.LettersMatched == g.Word {
		next.State = StateWon
	}
	return next, nil
}

// parseLetter accepts exactly one letter rune.
func parseLetter(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, &ValidationError{Field: "letter", Reason: "must be a single character"}
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.IsLetter(r) {
		return 0, &ValidationError{Field: "letter", Reason: fmt.Sprintf("%q is not a letter", s)}
	}
	return r, nil
}

// reveal copies matched, uncovering every position where word holds r.
func reveal(word, matched string, r rune) string {
	w := []rune(word)
	m := []rune(matched)
	for i := range w {
		if w[i] == r {
			m[i] = r
		}
	}
	return string(m)
}

// Check reports the first broken invariant of g, or nil.
func Check(g Game) error {
	w := []rune(g.Word)
	m := []rune(g.LettersMatched)
	if len(w) == 0 {
		return fmt.Errorf("game %s: empty word", g.ID)
	}
	if len(m) != len(w) {
		return fmt.Errorf("game %s: matched length %d, word length %d", g.ID, len(m), len(w))
	}
	for i := range w {
		if m[i] != w[i] && m[i] != Placeholder {
			return fmt.Errorf("game %s: position %d holds %q", g.ID, i, m[i])
		}
	}
	seen := make(map[rune]struct{}, len(g.LettersGuessed))
	for _, r := range g.LettersGuessed {
		if _, dup := seen[r]; dup {
			return fmt.Errorf("game %s: letter %q guessed twice", g.ID, r)
		}
		seen[r] = struct{}{}
	}
	if g.RemainingGuesses < 0 {
		return fmt.Errorf("game %s: negative remaining guesses", g.ID)
	}

	complete := g.LettersMatched == g.Word
	switch g.State {
	case StateWon:
		if !complete {
			return fmt.Errorf("game %s: won with hidden letters", g.ID)
		}
	case StateLost:
		if complete || g.RemainingGuesses != 0 {
			return fmt.Errorf("game %s: lost with %d guesses left", g.ID, g.RemainingGuesses)
		}
	case StateStarted:
		if complete || g.RemainingGuesses == 0 {
			return fmt.Errorf("game %s: still started after it ended", g.ID)
		}
	default:
		return fmt.Errorf("game %s: unknown state %q", g.ID, g.State)
	}
	return nil
}
