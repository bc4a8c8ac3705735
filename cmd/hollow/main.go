package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/hollow/internal/config"
	"github.com/xonecas/hollow/internal/game"
	"github.com/xonecas/hollow/internal/journal"
	"github.com/xonecas/hollow/internal/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "config.toml", "Path to config file")
		debug       = flag.Bool("debug", false, "Enable debug logging")
		replay      = flag.String("replay", "", "Print the journaled events of a session and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("Hollow %s\n", Version)
		os.Exit(0)
	}

	initLogging(*debug)
	log.Info().Str("version", Version).Msg("Starting Hollow")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log.Debug().Interface("config", cfg).Msg("Configuration loaded")

	if *replay != "" {
		if err := replaySession(cfg, *replay); err != nil {
			log.Fatal().Err(err).Msg("Failed to replay session")
		}
		return
	}

	rt, err := game.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize game")
	}
	defer rt.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(rt.Director, rt.Engine, cfg.Server.AllowedOrigins).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Shutdown did not complete cleanly")
	}

	log.Info().Msg("Hollow shutdown complete")
}

func replaySession(cfg *config.Config, sessionID string) error {
	j, err := game.OpenJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.ListForSession(sessionID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No events for session %s\n", sessionID)
		return nil
	}
	return journal.WriteEntries(os.Stdout, entries)
}

// initLogging writes human-readable logs to stderr; the server owns no terminal UI.
func initLogging(debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}
