package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "STORE", "DB_PATH", "WORDS_FILE", "WORD_MODE", "GUESS_BUDGET", "REQUEST_TIMEOUT"} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "5175" || cfg.Addr() != ":5175" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.Store != StoreMemory || cfg.WordMode != WordModeRandom {
		t.Fatalf("store=%q mode=%q", cfg.Store, cfg.WordMode)
	}
	if cfg.GuessBudget != 6 {
		t.Fatalf("budget = %d, want 6", cfg.GuessBudget)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("timeout = %v", cfg.RequestTimeout)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE", "sqlite")
	t.Setenv("DB_PATH", "/tmp/h.db")
	t.Setenv("WORD_MODE", "daily")
	t.Setenv("GUESS_BUDGET", "8")
	t.Setenv("REQUEST_TIMEOUT", "250ms")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "9000" || cfg.Store != StoreSQLite || cfg.DBPath != "/tmp/h.db" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.WordMode != WordModeDaily || cfg.GuessBudget != 8 || !cfg.LogPretty {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.RequestTimeout != 250*time.Millisecond {
		t.Fatalf("timeout = %v", cfg.RequestTimeout)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"unknown store", "STORE", "redis", "STORE"},
		{"unknown mode", "WORD_MODE", "weekly", "WORD_MODE"},
		{"zero budget", "GUESS_BUDGET", "0", "GUESS_BUDGET"},
		{"non-numeric budget", "GUESS_BUDGET", "lots", "parse env"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Parse()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %s", err, tc.want)
			}
		})
	}
}
