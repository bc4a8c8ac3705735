package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/hollow/internal/config"
	"github.com/xonecas/hollow/internal/game"
	"github.com/xonecas/hollow/internal/tui"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "config.toml", "Path to config file")
		ghostName   = flag.String("ghost", "", "Ghost to speak with")
		debug       = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("Hollow séance %s\n", Version)
		os.Exit(0)
	}

	if err := initLogging(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	rt, err := game.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize game")
	}
	defer rt.Close()

	model := tui.New(rt.Director, *ghostName)
	log.Info().Str("version", Version).Str("session", model.SessionID()).Msg("Séance started")

	program := tea.NewProgram(model, tea.WithAltScreen())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("Received shutdown signal")
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		log.Error().Err(err).Msg("TUI error")
	}

	log.Info().Msg("Séance ended")
}

func initLogging(debug bool) error {
	dataDir, err := config.EnsureDataDir()
	if err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	// Truncated on startup.
	logPath := filepath.Join(dataDir, "seance.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// The TUI owns stdout and stderr.
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()
	return nil
}
