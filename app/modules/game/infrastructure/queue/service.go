package gamequeue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gamedb "github.com/Black-And-White-Club/crownkeeper/app/modules/game/infrastructure/repositories"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability/attr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
)

// ErrInvalidInterval is returned for a non-positive reap interval.
var ErrInvalidInterval = errors.New("reap interval must be positive")

// QueueService runs the periodic session reaper.
type QueueService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service wraps a River client whose only job is the periodic session reap.
type Service struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService connects a pgx pool to dsn, makes sure River's schema exists and
// registers the reap job to run every interval (and once on start).
func NewService(
	ctx context.Context,
	dsn string,
	interval time.Duration,
	store gamedb.ExpiringStore,
	logger *slog.Logger,
	metrics observability.GameMetrics,
) (*Service, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
		attr.Duration("interval", interval),
	)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewSessionReapWorker(store, ctxLogger, metrics))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: 1},
		},
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(interval),
				func() (river.JobArgs, *river.InsertOpts) {
					return SessionReapJob{}, &river.InsertOpts{Queue: QueueName}
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	ctxLogger.Info("Session reaper initialized")
	return &Service{client: riverClient, pool: pool, logger: ctxLogger}, nil
}

// Migrate brings River's own tables up to date.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}

// Start begins working the queue.
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.Info("Session reaper started")
	return nil
}

// Stop waits for in-flight jobs and releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.Info("Session reaper stopped")
	return nil
}
