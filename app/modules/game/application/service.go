package gameservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
	gameutil "github.com/Black-And-White-Club/crownkeeper/app/modules/game/utils"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// GameService implements the Service interface.
type GameService struct {
	mu    sync.Mutex
	state gamedomain.GameState

	store     Persistence
	publisher message.Publisher
	orderer   gamedomain.Orderer
	clock     gameutil.Clock
	newID     func() string

	logger  *slog.Logger
	metrics observability.GameMetrics
	tracer  trace.Tracer
}

// NewGameService restores the stored game, or starts from an empty one.
// The publisher may be nil when nobody listens for game events.
func NewGameService(
	ctx context.Context,
	store Persistence,
	publisher message.Publisher,
	orderer gamedomain.Orderer,
	clock gameutil.Clock,
	logger *slog.Logger,
	metrics observability.GameMetrics,
	tracer trace.Tracer,
) *GameService {
	s := &GameService{
		store:     store,
		publisher: publisher,
		orderer:   orderer,
		clock:     clock,
		newID:     uuid.NewString,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
	}

	if restored, ok := store.Load(ctx); ok {
		s.state = restored
		logger.InfoContext(ctx, "Restored stored game",
			attr.Int("players", len(restored.Players)),
			attr.Int("rounds", len(restored.Rounds)),
		)
	} else {
		s.state = gamedomain.NewGameState()
	}
	return s
}

// Snapshot returns a deep copy of the current game.
func (s *GameService) Snapshot() gamedomain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// operationFunc is the signature wrapped by withTelemetry. The bool reports
// whether the game changed.
type operationFunc[T any] func(ctx context.Context) (T, bool)

// withTelemetry wraps an operation with a span, metrics and panic recovery.
// A recovered panic is reported as a no-op so callers never see it.
func withTelemetry[T any](
	s *GameService,
	ctx context.Context,
	operationName string,
	op operationFunc[T],
) (result T, changed bool) {
	ctx, span := s.tracer.Start(ctx, "GameService."+operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.Operation(operationName),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			var zero T
			result, changed = zero, false
		}
	}()

	result, changed = op(ctx)

	span.SetAttributes(attribute.Bool("changed", changed))
	s.metrics.RecordTransition(ctx, operationName, changed)
	if changed {
		s.logger.InfoContext(ctx, operationName+" applied", attr.Operation(operationName))
	} else {
		s.logger.DebugContext(ctx, operationName+" ignored", attr.Operation(operationName))
	}
	return result, changed
}

// commit applies transition under the lock. A changed state replaces the
// current one and is mirrored to storage before the lock is released; an
// unchanged one is never written.
func (s *GameService) commit(
	ctx context.Context,
	transition func(gamedomain.GameState) (gamedomain.GameState, bool),
) (before, after gamedomain.GameState, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before = s.state
	next, changed := transition(s.state)
	if !changed {
		return before, before, false
	}

	next.LastUpdatedAt = s.clock.NowUTC()
	s.state = next
	s.store.Save(ctx, next)
	return before, next.Clone(), true
}

// afterCommit publishes the events implied by a committed change.
func (s *GameService) afterCommit(ctx context.Context, before, after gamedomain.GameState, automatic bool) {
	for n := len(before.Rounds) + 1; n <= len(after.Rounds); n++ {
		payload := gamedomain.RoundAddedPayload{
			RoundNumber: n,
			CardLabel:   gamedomain.CardLabel(n),
			Automatic:   automatic,
		}
		if p, ok := after.TurnFor(n); ok {
			payload.TurnPlayer = p.Name
		}
		s.publish(ctx, gamedomain.RoundAddedTopic, payload)
	}

	// A decided game is announced again after every change.
	if after.IsDecided() {
		if !before.IsDecided() {
			s.metrics.RecordGameCompleted(ctx)
		}
		winner, _ := after.Winner()
		s.publish(ctx, gamedomain.GameCompletedTopic, gamedomain.GameCompletedPayload{
			Winner:        winner,
			Standings:     after.Rankings(),
			Players:       after.Players,
			Rounds:        after.Rounds,
			GameStartedAt: after.GameStartedAt,
			CompletedAt:   after.LastUpdatedAt,
		})
	}
}

func (s *GameService) publish(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to marshal event", attr.String("topic", topic), attr.Error(err))
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set("topic", topic)

	if err := s.publisher.Publish(topic, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event",
			attr.String("topic", topic),
			attr.String("message_id", msg.UUID),
			attr.Error(err),
		)
	}
}
