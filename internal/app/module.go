// Package app composes the client: config, lock, store, persistence,
// completion client, orchestrator and TUI, wired through fx.
package app

import (
	"context"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/telechat/telechat/internal/ai"
	"github.com/telechat/telechat/internal/bus"
	"github.com/telechat/telechat/internal/chat"
	"github.com/telechat/telechat/internal/config"
	"github.com/telechat/telechat/internal/lock"
	"github.com/telechat/telechat/internal/logging"
	"github.com/telechat/telechat/internal/orchestrator"
	"github.com/telechat/telechat/internal/persist"
	"github.com/telechat/telechat/internal/profile"
	"github.com/telechat/telechat/internal/tui"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	ProfileName string
}

// Module returns the fx module for the client, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("telechat",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideLock,
			provideBus,
			provideDB,
			provideAdapter,
			provideStore,
			provideCompleter,
			provideOrchestrator,
			provideUI,
		),
		fx.Invoke(registerLifecycle),
	)
}

// provideConfig loads the global config. A missing file is not an
// error: every field has a workable zero value.
func provideConfig() *config.Config {
	cfg, err := config.Load(profile.ConfigPath())
	if err != nil {
		return &config.Config{}
	}
	return cfg
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.ProfileName), p.ProfileName)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.ProfileName); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.ProfileName))
	l, err := lock.Acquire(profile.Dir(p.ProfileName))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideDB(p Params, logger *zap.Logger) (*persist.DB, error) {
	dbPath := profile.StateDBPath(p.ProfileName)
	db, err := persist.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("snapshot store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideAdapter(db *persist.DB, logger *zap.Logger) *persist.Adapter {
	return persist.NewAdapter(db, logger)
}

func provideStore(b *bus.Bus, adapter *persist.Adapter) *chat.Store {
	return chat.NewStore(b, adapter)
}

// provideCompleter builds the completion client. The environment
// variable wins over the config file.
func provideCompleter(cfg *config.Config, logger *zap.Logger) ai.Completer {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	return ai.NewClient(apiKey, cfg.Model, logger)
}

func provideOrchestrator(store *chat.Store, completer ai.Completer, cfg *config.Config, logger *zap.Logger) *orchestrator.Orchestrator {
	var opts orchestrator.Options
	if cfg.AckDelayMS > 0 {
		opts.AckDelay = time.Duration(cfg.AckDelayMS) * time.Millisecond
	}
	if cfg.RequestTimeoutMS > 0 {
		opts.RequestTimeout = time.Duration(cfg.RequestTimeoutMS) * time.Millisecond
	}
	return orchestrator.New(store, completer, logger, opts)
}

func provideUI(p Params, store *chat.Store, orch *orchestrator.Orchestrator, b *bus.Bus) *tui.App {
	return tui.NewApp(store, orch, b, p.ProfileName)
}

func registerLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, ui *tui.App, store *chat.Store, adapter *persist.Adapter, db *persist.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Restore the last snapshot, or seed a fresh conversation set.
			if state := adapter.Load(); state != nil {
				store.Hydrate(state)
				logger.Info("snapshot restored", zap.Int("chats", len(state.Chats)))
			} else {
				store.Hydrate(chat.SeedState())
				logger.Info("seeded initial conversations")
			}

			go func() {
				if err := ui.Run(); err != nil {
					logger.Error("TUI error", zap.Error(err))
				}
				_ = shutdowner.Shutdown()
			}()

			return nil
		},
		OnStop: func(_ context.Context) error {
			ui.Stop()
			adapter.Save(store.Snapshot())
			if err := db.Close(); err != nil {
				logger.Warn("error closing snapshot store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
