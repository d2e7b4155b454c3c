// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Word selection modes.
const (
	WordModeRandom = "random"
	WordModeDaily  = "daily"
)

// Config holds every tunable of the server process.
type Config struct {
	Port      string `env:"PORT" envDefault:"5175"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	Store  string `env:"STORE" envDefault:"memory"`
	DBPath string `env:"DB_PATH" envDefault:"./data/hangman.db"`

	WordsFile   string `env:"WORDS_FILE"`
	WordMode    string `env:"WORD_MODE" envDefault:"random"`
	DailySalt   string `env:"DAILY_SALT" envDefault:"local_dev_salt"`
	GuessBudget int    `env:"GUESS_BUDGET" envDefault:"6"`

	ClientOrigin    string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("config: STORE must be %q or %q, got %q", StoreMemory, StoreSQLite, c.Store)
	}
	switch c.WordMode {
	case WordModeRandom, WordModeDaily:
	default:
		return fmt.Errorf("config: WORD_MODE must be %q or %q, got %q", WordModeRandom, WordModeDaily, c.WordMode)
	}
	if c.GuessBudget < 1 {
		return fmt.Errorf("config: GUESS_BUDGET must be at least 1, got %d", c.GuessBudget)
	}
	if c.Store == StoreSQLite && c.DBPath == "" {
		return fmt.Errorf("config: DB_PATH is required for the sqlite store")
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }
