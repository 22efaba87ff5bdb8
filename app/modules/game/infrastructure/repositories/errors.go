package gamedb

import "errors"

// Sentinel errors for the storage layer. The adapter swallows all of them;
// they surface only through logs and the storage failure counter.
var (
	// ErrInvalidSnapshot means the stored value failed structural validation.
	ErrInvalidSnapshot = errors.New("invalid game snapshot")

	// ErrUnknownBackend is returned when the configured backend has no implementation.
	ErrUnknownBackend = errors.New("unknown storage backend")
)
