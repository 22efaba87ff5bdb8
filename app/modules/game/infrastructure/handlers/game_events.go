package gamehandlers

import (
	"encoding/json"
	"fmt"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
)

// HandleGameCompleted archives a finished game.
func (h *GameHandlers) HandleGameCompleted(msg *message.Message) error {
	ctx, span := h.tracer.Start(msg.Context(), "GameHandlers.HandleGameCompleted")
	defer span.End()

	var payload gamedomain.GameCompletedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.ErrorContext(ctx, "Failed to decode game completed payload",
			attr.String("message_id", msg.UUID),
			attr.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	h.logger.InfoContext(ctx, "Received GameCompleted event",
		attr.String("correlation_id", middleware.MessageCorrelationID(msg)),
		attr.String("winner", payload.Winner.Name),
		attr.Int("rounds", len(payload.Rounds)),
	)

	if h.archiver == nil {
		return nil
	}

	paths, err := h.archiver.Archive(ctx, payload)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to archive game", attr.Error(err))
		return fmt.Errorf("failed to archive game: %w", err)
	}

	span.SetAttributes(attribute.StringSlice("archive.paths", paths))
	h.logger.InfoContext(ctx, "Game archived", attr.Any("paths", paths))
	return nil
}

// HandleRoundAdded logs the card and the leading player of a new round.
func (h *GameHandlers) HandleRoundAdded(msg *message.Message) error {
	ctx := msg.Context()

	var payload gamedomain.RoundAddedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	h.logger.InfoContext(ctx, "Round started",
		attr.RoundNumber(payload.RoundNumber),
		attr.String("card", payload.CardLabel),
		attr.String("turn_player", payload.TurnPlayer),
		attr.Bool("automatic", payload.Automatic),
	)
	return nil
}
