package game

import (
	"context"
	"fmt"
	"math/rand/v2"

	gameservice "github.com/Black-And-White-Club/crownkeeper/app/modules/game/application"
	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
	gamehandlers "github.com/Black-And-White-Club/crownkeeper/app/modules/game/infrastructure/handlers"
	gamerouter "github.com/Black-And-White-Club/crownkeeper/app/modules/game/infrastructure/router"
	gameutil "github.com/Black-And-White-Club/crownkeeper/app/modules/game/utils"
	"github.com/Black-And-White-Club/crownkeeper/config"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
)

// Module represents the game module.
type Module struct {
	GameService *gameservice.GameService
	GameRouter  *gamerouter.GameRouter

	observability observability.Observability
	cancelFunc    context.CancelFunc
	routerDone    chan struct{}
}

// NewGameModule restores the game from store and, when router is non-nil,
// registers the event handlers on it.
func NewGameModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	store gameservice.Persistence,
	publisher message.Publisher,
	subscriber message.Subscriber,
	router *message.Router,
) (*Module, error) {
	logger := obs.Logger

	orderer := gamedomain.NewOrderer(cfg.TurnOrder(), rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	gameService := gameservice.NewGameService(ctx, store, publisher, orderer, gameutil.RealClock{}, logger, obs.Metrics, obs.Tracer)

	module := &Module{
		GameService:   gameService,
		observability: obs,
	}

	if router != nil {
		var registry prometheus.Registerer
		if obs.Registry != nil {
			registry = obs.Registry
		}
		gameRouter := gamerouter.NewGameRouter(logger, router, subscriber, registry)
		if err := gameRouter.Configure(ctx, NewHandlers(cfg, obs)); err != nil {
			return nil, fmt.Errorf("failed to configure game router: %w", err)
		}
		module.GameRouter = gameRouter
	}

	return module, nil
}

// NewHandlers builds the event handlers, archiving only when a directory is configured.
func NewHandlers(cfg *config.Config, obs observability.Observability) gamehandlers.Handlers {
	var archiver gamehandlers.Archiver
	if cfg.Archive.Dir != "" {
		archiver = gamehandlers.NewFileArchiver(cfg.Archive.Dir)
	}
	return gamehandlers.NewGameHandlers(archiver, obs.Logger, obs.Tracer)
}

// Run starts the router in the background and returns once its handlers are
// subscribed, so events published afterwards are never missed.
func (m *Module) Run(ctx context.Context) {
	if m.GameRouter == nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	m.routerDone = make(chan struct{})

	go func() {
		defer close(m.routerDone)
		if err := m.GameRouter.Router.Run(ctx); err != nil {
			m.observability.Logger.ErrorContext(ctx, "Game router stopped", "error", err)
		}
	}()

	select {
	case <-m.GameRouter.Router.Running():
	case <-m.routerDone:
	}
}

// Close stops the game module and cleans up resources.
func (m *Module) Close() error {
	logger := m.observability.Logger

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.GameRouter != nil {
		if err := m.GameRouter.Close(); err != nil {
			logger.Error("Error closing GameRouter from module", "error", err)
			return fmt.Errorf("error closing GameRouter: %w", err)
		}
		if m.routerDone != nil {
			<-m.routerDone
		}
	}

	logger.Debug("Game module stopped")
	return nil
}
