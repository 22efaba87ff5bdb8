package gamequeue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gamedb "github.com/Black-And-White-Club/crownkeeper/app/modules/game/infrastructure/repositories"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability/attr"
	"github.com/riverqueue/river"
)

const reapOperation = "session_reap"

// SessionReapWorker runs SessionReapJob against an expiring store.
type SessionReapWorker struct {
	river.WorkerDefaults[SessionReapJob]

	store   gamedb.ExpiringStore
	logger  *slog.Logger
	metrics observability.GameMetrics
}

func NewSessionReapWorker(store gamedb.ExpiringStore, logger *slog.Logger, metrics observability.GameMetrics) *SessionReapWorker {
	return &SessionReapWorker{store: store, logger: logger, metrics: metrics}
}

// Work deletes expired sessions. Errors are returned so River retries the job.
func (w *SessionReapWorker) Work(ctx context.Context, job *river.Job[SessionReapJob]) error {
	_, err := Reap(ctx, w.store, w.logger, w.metrics)
	if err != nil {
		w.logger.WarnContext(ctx, "Session reap job failed",
			attr.Int("attempt", job.Attempt),
			attr.Error(err),
		)
	}
	return err
}

// Timeout bounds a single reap so a stuck database never pins a worker.
func (w *SessionReapWorker) Timeout(*river.Job[SessionReapJob]) time.Duration {
	return 30 * time.Second
}

// Reap deletes expired sessions once and reports how many were removed.
func Reap(ctx context.Context, store gamedb.ExpiringStore, logger *slog.Logger, metrics observability.GameMetrics) (int, error) {
	start := time.Now()
	metrics.RecordOperationAttempt(ctx, reapOperation)
	defer func() {
		metrics.RecordOperationDuration(ctx, reapOperation, time.Since(start))
	}()

	n, err := store.DeleteExpired(ctx)
	if err != nil {
		metrics.RecordOperationFailure(ctx, reapOperation)
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	logger.InfoContext(ctx, "Expired sessions reaped",
		attr.Int("deleted", n),
		attr.Duration("duration", time.Since(start)),
	)
	return n, nil
}
