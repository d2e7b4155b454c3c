package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/httpserver"
	"github.com/robalobadob/hangman/internal/live"
	"github.com/robalobadob/hangman/internal/service"
	"github.com/robalobadob/hangman/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := wordSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("failed to open store")
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}()

	hub := live.NewHub(cfg.ClientOrigin)
	svc := service.New(st, src, cfg.GuessBudget, hub)
	srv := httpserver.New(svc, hub, httpserver.Options{
		ClientOrigin:   cfg.ClientOrigin,
		RequestTimeout: cfg.RequestTimeout,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	// Hijacked websocket connections are not tracked by Shutdown.
	httpSrv.RegisterOnShutdown(hub.Close)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpSrv.Addr).Str("store", cfg.Store).Str("wordMode", cfg.WordMode).Msg("starting go-server")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server exited")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

// setupLogging applies LOG_LEVEL and LOG_PRETTY to the global zerolog logger.
func setupLogging(cfg config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, keeping default")
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// wordSource loads the word list and picks the selection mode.
func wordSource(cfg config.Config) (words.Source, error) {
	list, err := words.Load(cfg.WordsFile)
	if err != nil {
		return nil, err
	}
	log.Info().Int("words", list.Len()).Str("file", cfg.WordsFile).Msg("word list loaded")
	if cfg.WordMode == config.WordModeDaily {
		return words.NewDaily(list, cfg.DailySalt), nil
	}
	return words.NewRandom(list), nil
}
