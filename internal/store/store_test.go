package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/robalobadob/hangman/assets"
	"github.com/robalobadob/hangman/internal/game"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "games.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(context.Background(), db, assets.Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLiteStore(db)
}

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, openTestSQLite(t)) })
}

func newGame(t *testing.T, word string) game.Game {
	t.Helper()
	g, err := game.New(word, 3)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func TestCreateGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		created, err := s.Create(ctx, newGame(t, "lantern"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.Version != 1 {
			t.Fatalf("version = %d, want 1", created.Version)
		}
		if created.CreatedAt.IsZero() || !created.UpdatedAt.Equal(created.CreatedAt) {
			t.Fatalf("expected matching creation timestamps")
		}

		got, err := s.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ID != created.ID || got.Word != "lantern" || got.LettersMatched != "_______" {
			t.Fatalf("got %+v", got)
		}
		if got.State != game.StateStarted || got.RemainingGuesses != 3 || got.Version != 1 {
			t.Fatalf("got %+v", got)
		}
		if !got.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("created_at = %v, want %v", got.CreatedAt, created.CreatedAt)
		}
	})
}

func TestCreateDuplicateID(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		g := newGame(t, "lantern")
		if _, err := s.Create(ctx, g); err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := s.Create(ctx, g); !errors.Is(err, ErrConflict) {
			t.Fatalf("err = %v, want ErrConflict", err)
		}
	})
}

func TestGetMissing(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestUpdateVersioning(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		g, err := s.Create(ctx, newGame(t, "ox"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		next, err := game.Guess(g, "o")
		if err != nil {
			t.Fatalf("guess: %v", err)
		}
		updated, err := s.Update(ctx, next)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Version != 2 || updated.LettersMatched != "o_" {
			t.Fatalf("updated = %+v", updated)
		}

		got, err := s.Get(ctx, g.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.LettersGuessed != "o" || got.Version != 2 {
			t.Fatalf("read-your-writes: got %+v", got)
		}

		// A write based on the original version must lose.
		stale, _ := game.Guess(g, "z")
		if _, err := s.Update(ctx, stale); !errors.Is(err, ErrConflict) {
			t.Fatalf("err = %v, want ErrConflict", err)
		}
		got, _ = s.Get(ctx, g.ID)
		if got.RemainingGuesses != 3 {
			t.Fatalf("stale write applied: %+v", got)
		}
	})
}

func TestUpdateMissing(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		g := newGame(t, "ox")
		g.Version = 1
		if _, err := s.Update(context.Background(), g); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestListAndDelete(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		var ids []string
		for _, w := range []string{"one", "two", "three"} {
			g, err := s.Create(ctx, newGame(t, w))
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			ids = append(ids, g.ID)
		}

		list, err := s.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("len = %d, want 3", len(list))
		}

		if err := s.Delete(ctx, ids[1]); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := s.Delete(ctx, ids[1]); err != nil {
			t.Fatalf("second delete: %v", err)
		}
		if _, err := s.Get(ctx, ids[1]); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		list, _ = s.List(ctx)
		if len(list) != 2 {
			t.Fatalf("len = %d, want 2", len(list))
		}
	})
}

func TestListEmpty(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		list, err := s.List(context.Background())
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if list == nil || len(list) != 0 {
			t.Fatalf("list = %#v, want empty slice", list)
		}
	})
}

// Racing updates from the same version: exactly one commits.
func TestConcurrentUpdates(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		g, err := s.Create(ctx, newGame(t, "abcdefgh"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			committed int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(letter string) {
				defer wg.Done()
				next, _ := game.Guess(g, letter)
				if _, err := s.Update(ctx, next); err == nil {
					mu.Lock()
					committed++
					mu.Unlock()
				} else if !errors.Is(err, ErrConflict) {
					t.Errorf("update: %v", err)
				}
			}(string(rune('a' + i)))
		}
		wg.Wait()

		if committed != 1 {
			t.Fatalf("committed = %d, want 1", committed)
		}
		got, _ := s.Get(ctx, g.ID)
		if len(got.LettersGuessed) != 1 || got.Version != 2 {
			t.Fatalf("got %+v", got)
		}
	})
}

func TestMigrateIdempotent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	fsys := fstest.MapFS{
		"0001_a.sql": {Data: []byte(`CREATE TABLE a (id INTEGER PRIMARY KEY);`)},
		"0002_b.sql": {Data: []byte(`BEGIN TRANSACTION; CREATE TABLE b (id INTEGER PRIMARY KEY); COMMIT;`)},
		"README.md":  {Data: []byte(`not a migration`)},
	}
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := Migrate(ctx, db, fsys); err != nil {
			t.Fatalf("migrate pass %d: %v", i, err)
		}
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("recorded = %d, want 2", n)
	}
	for _, table := range []string{"a", "b"} {
		if _, err := db.Exec(`SELECT * FROM ` + table); err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestSQLiteRejectsCorruptRow(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	g, err := s.Create(ctx, newGame(t, "cat"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.db.Exec(`UPDATE games SET letters_matched='dog' WHERE id=?`, g.ID); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, err := s.Get(ctx, g.ID); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want corrupt row error", err)
	}
}
