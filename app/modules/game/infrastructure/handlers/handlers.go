package gamehandlers

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidPayload marks a message that can never be processed.
var ErrInvalidPayload = errors.New("invalid event payload")

// GameHandlers handles game events.
type GameHandlers struct {
	archiver Archiver
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewGameHandlers creates a new GameHandlers. A nil archiver turns archiving off.
func NewGameHandlers(archiver Archiver, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &GameHandlers{
		archiver: archiver,
		logger:   logger,
		tracer:   tracer,
	}
}
