package daemon

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ghndrx/hearth-mobile-sub001/internal/api"
	"github.com/ghndrx/hearth-mobile-sub001/internal/bus"
	"github.com/ghndrx/hearth-mobile-sub001/internal/config"
	"github.com/ghndrx/hearth-mobile-sub001/internal/ingest"
	"github.com/ghndrx/hearth-mobile-sub001/internal/lock"
	"github.com/ghndrx/hearth-mobile-sub001/internal/logging"
	"github.com/ghndrx/hearth-mobile-sub001/internal/profile"
	"github.com/ghndrx/hearth-mobile-sub001/internal/search"
	"github.com/ghndrx/hearth-mobile-sub001/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	ProfileName string
	BindAddr    string // optional override, e.g. "127.0.0.1:0" in tests; empty = use config
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideSearchEngine,
			provideSession,
			provideIngestEngine,
			provideServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig() (*config.Config, error) {
	cfg, err := config.Load(profile.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.ProfileName), p.ProfileName)
}

func provideBus() *bus.Bus {
	return bus.New()
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

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.CorpusDBPath(p.ProfileName)
	db, err := store.Open(dbPath)
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
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideSearchEngine(db *store.DB, logger *zap.Logger) *search.Engine {
	return search.NewEngine(db, logger)
}

func provideSession(engine *search.Engine, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *search.Session {
	debounce := time.Duration(cfg.DebounceMS) * time.Millisecond
	return search.NewSession(engine, b, logger, debounce)
}

func provideIngestEngine(db *store.DB, b *bus.Bus, logger *zap.Logger) *ingest.Engine {
	return ingest.NewEngine(db, b, logger)
}

func provideServer(p Params, cfg *config.Config, db *store.DB, session *search.Session, ing *ingest.Engine, logger *zap.Logger) *api.Server {
	addr := p.BindAddr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.APIPort)
	}
	return api.NewServer(addr, db, session, ing, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *api.Server, session *search.Session, ing *ingest.Engine, lk *lock.Lock, db *store.DB, b *bus.Bus, logger *zap.Logger) {
	var unsubscribe func()

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Start the ingest engine (subscribes to corpus.* bus events).
			ing.Start(context.Background())

			// Re-run the active search when the corpus changes so stale
			// results never linger on screen.
			events, unsub := b.Subscribe(bus.KindMessageUpserted, 64)
			unsubscribe = unsub
			go func() {
				for range events {
					if session.Status() != search.StatusIdle {
						session.Refresh(context.Background())
					}
				}
			}()

			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("api server error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("error shutting down api server", zap.Error(err))
			}
			ing.Stop()
			if unsubscribe != nil {
				unsubscribe()
			}
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
