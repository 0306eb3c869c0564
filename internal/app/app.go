// Package app wires the store, game services, and HTTP server into a
// runnable process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/louisbranch/assassin/internal/game/directory"
	"github.com/louisbranch/assassin/internal/game/domain"
	"github.com/louisbranch/assassin/internal/game/invite"
	"github.com/louisbranch/assassin/internal/game/registry"
	"github.com/louisbranch/assassin/internal/game/session"
	"github.com/louisbranch/assassin/internal/platform/config"
	"github.com/louisbranch/assassin/internal/stats"
	"github.com/louisbranch/assassin/internal/store"
	"github.com/louisbranch/assassin/internal/store/bolt"
	"github.com/louisbranch/assassin/internal/store/memory"
	"github.com/louisbranch/assassin/internal/store/sqlite"
	"github.com/louisbranch/assassin/internal/telemetry"
	"github.com/louisbranch/assassin/internal/web"
)

// Config holds process configuration, loaded from the environment.
type Config struct {
	Addr        string `env:"ASSASSIN_ADDR" envDefault:":8080"`
	StoreDriver string `env:"ASSASSIN_STORE_DRIVER" envDefault:"memory"`
	StorePath   string `env:"ASSASSIN_STORE_PATH" envDefault:"assassin.db"`

	ShutdownTimeout time.Duration `env:"ASSASSIN_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ParseConfig loads Config from environment variables.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// OpenStore opens the configured store backend.
func OpenStore(cfg Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return memory.New(), nil
	case "bolt":
		return bolt.Open(cfg.StorePath)
	case "sqlite":
		return sqlite.Open(cfg.StorePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully. Win evaluators are attached to every started
// game found at boot and to games started while running.
func Run(ctx context.Context, cfg Config, logger *log.Logger) error {
	st, err := OpenStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	emitter := telemetry.NewEmitter(st)
	sess := session.New(st, emitter, session.DefaultConfig())
	server := web.New(
		registry.New(st, emitter),
		directory.New(st),
		sess,
		invite.New(st),
		stats.New(st),
		st,
		logger,
	)

	evaluators := session.NewEvaluator(sess, logger)
	server.OnGameStarted(func(name string) {
		go func() {
			if err := evaluators.Run(ctx, name); err != nil && logger != nil {
				logger.Printf("evaluator for game %s: %v", name, err)
			}
		}()
	})
	if err := attachEvaluators(ctx, st, registry.New(st, nil), evaluators, logger); err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Routes(),
	}

	errs := make(chan error, 1)
	go func() {
		if logger != nil {
			logger.Printf("listening on %s", cfg.Addr)
		}
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// attachEvaluators resumes win evaluation for games that were already
// started when the process booted.
func attachEvaluators(ctx context.Context, st store.Store, reg *registry.Registry, evaluators *session.Evaluator, logger *log.Logger) error {
	names, err := st.Children(ctx, domain.GamesPath())
	if err != nil {
		return fmt.Errorf("list games: %w", err)
	}
	for _, name := range names {
		started, err := reg.IsStarted(ctx, name)
		if err != nil || !started {
			continue
		}
		go func(name string) {
			if err := evaluators.Run(ctx, name); err != nil && logger != nil {
				logger.Printf("evaluator for game %s: %v", name, err)
			}
		}(name)
	}
	return nil
}
