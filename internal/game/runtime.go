// Package game assembles the progression engine, the ghost director and the
// optional event journal from configuration.
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/hollow/internal/config"
	"github.com/xonecas/hollow/internal/constants"
	"github.com/xonecas/hollow/internal/core"
	"github.com/xonecas/hollow/internal/ghost"
	"github.com/xonecas/hollow/internal/journal"
	"github.com/xonecas/hollow/internal/provider"
	"github.com/xonecas/hollow/internal/session"
	"github.com/xonecas/hollow/internal/unlock"
)

// Runtime owns everything a running game needs.
type Runtime struct {
	Engine   *core.Engine
	Director *ghost.Director
	Bus      *core.EventBus
	Journal  *journal.Journal

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a runtime that talks to the configured provider.
func New(cfg *config.Config) (*Runtime, error) {
	registry := provider.NewRegistry()
	factory := provider.NewOpenAIFactory(cfg.Provider.Name, cfg.Provider.Endpoint, cfg.Provider.APIKey(), cfg.Provider.RateLimit, cfg.Provider.RateBurst)
	registry.Register(factory.Create(cfg.Provider.Model, cfg.Provider.Temperature))

	p, err := registry.Get(cfg.Provider.Name)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", cfg.Provider.Name, err)
	}
	if cfg.Provider.APIKey() == "" {
		log.Warn().Str("env", cfg.Provider.APIKeyEnv).Msg("No provider API key set")
	}

	return NewWithProvider(cfg, p)
}

// NewWithProvider builds a runtime around an existing provider.
func NewWithProvider(cfg *config.Config, p provider.Provider) (*Runtime, error) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runtime{
		Bus:    core.NewEventBus(constants.MinEventBusBufferSize),
		cancel: cancel,
	}

	r.Engine = core.NewEngine(session.NewStore(), unlock.NewRegistry(), r.Bus,
		core.WithMaxArcs(cfg.Game.MaxArcs),
		core.WithStrictUnlocks(cfg.Game.StrictUnlocks),
	)
	r.Director = ghost.NewDirector(p, r.Engine)

	if cfg.Journal.Enabled {
		j, err := OpenJournal(cfg)
		if err != nil {
			cancel()
			r.Bus.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		r.Journal = j
		events := r.Bus.Subscribe()
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			j.Run(ctx, events)
		}()
		log.Debug().Msg("Journal enabled")
	}

	if ttl := cfg.Game.SessionIdleTTL.Duration; ttl > 0 {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.evictLoop(ctx, ttl)
		}()
	}

	return r, nil
}

// OpenJournal opens the configured journal, defaulting to the data directory.
func OpenJournal(cfg *config.Config) (*journal.Journal, error) {
	if cfg.Journal.Path != "" {
		return journal.Open(cfg.Journal.Path)
	}
	return journal.New()
}

func (r *Runtime) evictLoop(ctx context.Context, ttl time.Duration) {
	ticker := time.NewTicker(max(ttl/2, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Engine.Store().Evict(ttl)
		}
	}
}

// Close stops background work and releases the journal.
func (r *Runtime) Close() error {
	r.cancel()
	r.wg.Wait()
	r.Bus.Close()
	if r.Journal != nil {
		return r.Journal.Close()
	}
	return nil
}
