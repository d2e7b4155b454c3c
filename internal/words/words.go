// internal/words/words.go
//
// Provides the Word Source for new games.
//
// Responsibilities:
//   - Load a word list from a file, or fall back to the embedded default.
//   - Supply secret words: uniformly at random (Random) or one per UTC day (Daily).
//
// Constraints:
//   • Words must be lowercase alphabetic (a–z); anything else is skipped.
//   • Blank lines and lines starting with '#' are ignored.
//   • Duplicates are dropped, first occurrence wins.

package words

import (
	"bufio"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/robalobadob/hangman/assets"
)

// ErrEmptyList is returned when a list holds no usable words.
var ErrEmptyList = errors.New("words: list is empty")

// Source supplies the secret word for a new game.
type Source interface {
	RandomWord(ctx context.Context) (string, error)
}

// List is an immutable, de-duplicated word list.
type List struct {
	words []string
}

// Load reads the list at path, or the embedded default when path is empty.
func Load(path string) (*List, error) {
	var (
		raw []string
		err error
	)
	if path == "" {
		raw, err = assets.WordList()
	} else {
		raw, err = readWordFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	return NewList(raw)
}

// NewList normalizes raw into a List.
func NewList(raw []string) (*List, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		w := strings.TrimSpace(strings.ToLower(line))
		if w == "" || strings.HasPrefix(w, "#") || !isAlpha(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	if len(out) == 0 {
		return nil, ErrEmptyList
	}
	return &List{words: out}, nil
}

// Len reports how many words are loaded.
func (l *List) Len() int { return len(l.words) }

// At returns the i-th word.
func (l *List) At(i int) string { return l.words[i] }

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Random picks a uniformly random word on every call.
type Random struct {
	list *List
}

// NewRandom returns a Source drawing from list.
func NewRandom(list *List) *Random { return &Random{list: list} }

// RandomWord returns a cryptographically random word from the list.
func (r *Random) RandomWord(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(r.list.Len())))
	if err != nil {
		return "", fmt.Errorf("random word: %w", err)
	}
	return r.list.At(int(n.Int64())), nil
}
