package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/vitrine"
	"github.com/aretw0/vitrine/internal/config"
	"github.com/aretw0/vitrine/pkg/adapters/redis"
	"github.com/aretw0/vitrine/pkg/entity"
	"github.com/aretw0/vitrine/pkg/observability"
	"github.com/aretw0/vitrine/pkg/redact"
	"github.com/aretw0/vitrine/pkg/resolve"
)

// App is a configured engine plus the resources it holds.
type App struct {
	Engine *vitrine.Engine
	Cache  *redis.Store
	Logger *slog.Logger
}

// Close releases the Redis connection, if any, and restores in-memory
// adapter caches.
func (a *App) Close() error {
	if a.Cache == nil {
		return nil
	}
	resolve.SetCacheFactory(nil)
	return a.Cache.Close()
}

// NewApp initializes a vitrine engine with standard CLI conventions:
// process-wide settings from cfg first, then declarations, then a full
// validation pass so configuration errors surface before the first render.
func NewApp(ctx context.Context, cfg config.Config, logger *slog.Logger, hooks ...observability.Hooks) (*App, error) {
	resolve.SetLogger(logger)
	if err := entity.UseKeyTransformer(cfg.KeyTransformer); err != nil {
		return nil, err
	}

	redactor, err := redact.New(cfg.Redact...)
	if err != nil {
		return nil, err
	}
	redact.RegisterFormatter()

	app := &App{Logger: logger}
	if cfg.Redis.Addr != "" {
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
			redis.WithLogger(logger),
		)
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("redis at %s unreachable: %w", cfg.Redis.Addr, err)
		}
		resolve.SetCacheFactory(store.Factory())
		app.Cache = store
		logger.Debug("adapter cache backed by redis", "addr", cfg.Redis.Addr)
	}

	app.Engine = vitrine.New(
		vitrine.WithLogger(logger),
		vitrine.WithRedactor(redactor),
		vitrine.WithHooks(observability.Combine(append([]observability.Hooks{observability.LogHooks(logger)}, hooks...)...)),
	)
	if _, err := app.Engine.LoadDeclarations(cfg.Declarations...); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.Engine.Validate(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}
