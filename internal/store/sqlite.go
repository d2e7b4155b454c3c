// internal/store/sqlite.go
//
// SQLite-backed Store implementation plus database helpers.
// Responsibilities:
//   - Opening SQLite database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying migrations from an fs.FS of *.sql files (idempotent, recorded in _migrations).
//   - Game CRUD with optimistic versioning on update.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
)

// OpenSQLite opens (and creates if missing) a SQLite database file.
//
//   - Ensures parent directory exists for relative DSNs (e.g. ./data/hangman.db).
//   - Configures busy timeout and WAL journaling mode.
//   - Enforces foreign keys.
func OpenSQLite(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// Migrate applies the *.sql files in fsys.
//
//   - Uses a _migrations table to track applied files.
//   - Executes each file in lexical order, skipping those already applied.
//   - Scripts that manage their own transaction (BEGIN TRANSACTION or
//     PRAGMA FOREIGN_KEYS=OFF) run outside of an outer transaction.
func Migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	var files []string
	if err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		sqlText := string(sqlBytes)

		upper := strings.ToUpper(sqlText)
		selfManaged := strings.Contains(upper, "BEGIN TRANSACTION") ||
			strings.Contains(upper, "PRAGMA FOREIGN_KEYS=OFF") ||
			strings.Contains(upper, "PRAGMA FOREIGN_KEYS = OFF")

		if selfManaged {
			if _, err := db.ExecContext(ctx, sqlText); err != nil {
				return fmt.Errorf("apply %s: %w", f, err)
			}
			if _, err := db.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
				return fmt.Errorf("record %s: %w", f, err)
			}
			log.Info().Str("migration", f).Msg("applied (self-managed)")
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, sqlText); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// SQLite is a Store backed by the games table.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore wraps a migrated database handle.
func NewSQLiteStore(db *sql.DB) *SQLite {
	return &SQLite{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const gameColumns = `id, word, letters_guessed, letters_matched, remaining_guesses, state, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanGame converts a games row into a game.Game and checks its invariants.
func scanGame(row rowScanner) (game.Game, error) {
	var (
		g                game.Game
		state            string
		created, updated string
	)
	if err := row.Scan(&g.ID, &g.Word, &g.LettersGuessed, &g.LettersMatched,
		&g.RemainingGuesses, &state, &g.Version, &created, &updated); err != nil {
		return game.Game{}, err
	}
	g.State = game.State(state)
	g.CreatedAt = parseTime(created)
	g.UpdatedAt = parseTime(updated)
	if err := game.Check(g); err != nil {
		return game.Game{}, fmt.Errorf("corrupt row: %w", err)
	}
	return g, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

// parseTime parses stored timestamps; on error returns zero time.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// Get loads one game.
func (s *SQLite) Get(ctx context.Context, id string) (game.Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id=?`, id)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Game{}, ErrNotFound
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("get game %s: %w", id, err)
	}
	return g, nil
}

// List loads every game, oldest first.
func (s *SQLite) List(ctx context.Context) ([]game.Game, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+gameColumns+` FROM games ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	out := []game.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("list games: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Create inserts a new game at version 1.
func (s *SQLite) Create(ctx context.Context, g game.Game) (game.Game, error) {
	now := s.now()
	g.Version = 1
	g.CreatedAt = now
	g.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `INSERT INTO games (`+gameColumns+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		g.ID, g.Word, g.LettersGuessed, g.LettersMatched, g.RemainingGuesses,
		string(g.State), g.Version, formatTime(g.CreatedAt), formatTime(g.UpdatedAt))
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return game.Game{}, fmt.Errorf("create game %s: %w", g.ID, ErrConflict)
		}
		return game.Game{}, fmt.Errorf("create game %s: %w", g.ID, err)
	}
	return g, nil
}

// Update writes g if the stored version still equals g.Version.
func (s *SQLite) Update(ctx context.Context, g game.Game) (game.Game, error) {
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE games
		SET letters_guessed=?, letters_matched=?, remaining_guesses=?, state=?,
		    version=version+1, updated_at=?
		WHERE id=? AND version=?`,
		g.LettersGuessed, g.LettersMatched, g.RemainingGuesses, string(g.State),
		formatTime(now), g.ID, g.Version)
	if err != nil {
		return game.Game{}, fmt.Errorf("update game %s: %w", g.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return game.Game{}, fmt.Errorf("update game %s: %w", g.ID, err)
	}
	if n == 0 {
		if _, err := s.Get(ctx, g.ID); err != nil {
			return game.Game{}, err
		}
		return game.Game{}, ErrConflict
	}
	return s.Get(ctx, g.ID)
}

// Delete removes the row if present.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id=?`, id); err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	return nil
}
