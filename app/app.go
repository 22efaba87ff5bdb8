package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Black-And-White-Club/crownkeeper/app/modules/game"
	gamedb "github.com/Black-And-White-Club/crownkeeper/app/modules/game/infrastructure/repositories"
	gameutil "github.com/Black-And-White-Club/crownkeeper/app/modules/game/utils"
	"github.com/Black-And-White-Club/crownkeeper/config"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// App holds the wiring for one CLI invocation.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	GameModule    *game.Module

	store   gamedb.KeyValueStore
	closers []closer
}

// NewApp opens storage and the event bus and restores the stored game.
func NewApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	obs, err := observability.Init(logOut, observability.Config{
		LogLevel:       cfg.Observability.LogLevel,
		LogFormat:      cfg.Observability.LogFormat,
		Environment:    cfg.Observability.Environment,
		PushgatewayURL: cfg.Observability.PushgatewayURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	a := &App{Config: cfg, Observability: obs}

	store, closeStore, err := newKeyValueStore(ctx, cfg, obs.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}
	a.store = store
	a.closers = append(a.closers, closeStore)

	bus, err := newEventBus(cfg, obs.Logger)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	a.closers = append(a.closers, bus.close)

	var router *message.Router
	if bus.subscriber != nil {
		router, err = message.NewRouter(message.RouterConfig{CloseTimeout: 5 * time.Second}, watermill.NewSlogLogger(obs.Logger))
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("failed to create Watermill router: %w", err)
		}
	}

	adapter := gamedb.NewAdapter(store, cfg.Storage.Key, obs.Logger, obs.Metrics, gameutil.RealClock{})
	module, err := game.NewGameModule(ctx, cfg, obs, adapter, bus.publisher, bus.subscriber, router)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	module.Run(ctx)
	a.GameModule = module

	return a, nil
}

// Close stops the module, releases backends in reverse order and pushes metrics.
func (a *App) Close(ctx context.Context) {
	logger := a.Observability.Logger

	if a.GameModule != nil {
		if err := a.GameModule.Close(); err != nil {
			logger.WarnContext(ctx, "Failed to close game module", attr.Error(err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.WarnContext(ctx, "Failed to release resource", attr.Error(err))
		}
	}
	a.closers = nil

	if err := a.Observability.Flush(ctx); err != nil {
		logger.WarnContext(ctx, "Failed to push metrics", attr.Error(err))
	}
}

// ExpiringStore returns the storage backend when it supports reaping.
func (a *App) ExpiringStore() (gamedb.ExpiringStore, error) {
	s, ok := a.store.(gamedb.ExpiringStore)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotReapable, a.Config.Storage.Backend)
	}
	return s, nil
}
