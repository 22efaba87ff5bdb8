package gamerouter

import (
	"context"
	"log/slog"
	"time"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
	gamehandlers "github.com/Black-And-White-Club/crownkeeper/app/modules/game/infrastructure/handlers"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// GameRouter binds game event handlers to a watermill router.
type GameRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber

	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewGameRouter creates a GameRouter. Router metrics are registered on
// registry when it is non-nil.
func NewGameRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	registry prometheus.Registerer,
) *GameRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil {
		b := metrics.NewPrometheusMetricsBuilder(registry, "crownkeeper", "router")
		metricsBuilder = &b
	}

	return &GameRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		metricsBuilder: metricsBuilder,
	}
}

// Configure installs middleware and registers the handlers.
func (r *GameRouter) Configure(_ context.Context, handlers gamehandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		dropFailed(r.logger),
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      2,
			InitialInterval: 50 * time.Millisecond,
			Logger:          watermill.NewSlogLogger(r.logger),
		}.Middleware,
	)

	r.registerHandlers(handlers)
	return nil
}

func (r *GameRouter) registerHandlers(h gamehandlers.Handlers) {
	r.Router.AddNoPublisherHandler("game.archive", gamedomain.GameCompletedTopic, r.subscriber, h.HandleGameCompleted)
	r.Router.AddNoPublisherHandler("game.round_log", gamedomain.RoundAddedTopic, r.subscriber, h.HandleRoundAdded)
}

// dropFailed acks a message whose handler still fails after retries, so a
// broken archive never wedges the publisher.
func dropFailed(logger *slog.Logger) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			produced, err := h(msg)
			if err != nil {
				logger.ErrorContext(msg.Context(), "Dropping game event after failed handling",
					attr.String("message_id", msg.UUID),
					attr.String("topic", message.SubscribeTopicFromCtx(msg.Context())),
					attr.Error(err),
				)
				return nil, nil
			}
			return produced, nil
		}
	}
}

// Close stops the router.
func (r *GameRouter) Close() error {
	return r.Router.Close()
}
