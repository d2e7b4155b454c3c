// db.go
//
// Store selection for the Hangman Go server.
//   - "memory": games live in process memory and vanish on restart.
//   - "sqlite": games are kept in DB_PATH; embedded migrations are applied
//     on every start (idempotent, recorded in _migrations).

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/assets"
	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/store"
)

// openStore builds the configured Store and a matching close func.
func openStore(ctx context.Context, cfg config.Config) (store.Store, func() error, error) {
	if cfg.Store != config.StoreSQLite {
		return store.NewMemoryStore(), func() error { return nil }, nil
	}

	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.DBPath, err)
	}
	if err := store.Migrate(ctx, db, assets.Migrations()); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("path", cfg.DBPath).Msg("sqlite store ready")
	return store.NewSQLiteStore(db), db.Close, nil
}
