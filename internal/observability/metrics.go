package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// GameMetrics records game and storage activity.
type GameMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, d time.Duration)
	RecordTransition(ctx context.Context, operation string, changed bool)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordStorageFailure(ctx context.Context, operation string)
	RecordGameCompleted(ctx context.Context)
}

type prometheusGameMetrics struct {
	attempts        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	failures        *prometheus.CounterVec
	storageFailures *prometheus.CounterVec
	completed       prometheus.Counter
}

// NewGameMetrics registers the game collectors on reg.
func NewGameMetrics(reg prometheus.Registerer) (GameMetrics, error) {
	m := &prometheusGameMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crownkeeper",
			Name:      "operation_attempts_total",
			Help:      "Game operations invoked.",
		}, []string{"operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crownkeeper",
			Name:      "operation_duration_seconds",
			Help:      "Time spent applying and persisting a game operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crownkeeper",
			Name:      "transitions_total",
			Help:      "Game operations by whether they changed the state.",
		}, []string{"operation", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crownkeeper",
			Name:      "operation_failures_total",
			Help:      "Game operations that panicked or failed outright.",
		}, []string{"operation"}),
		storageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crownkeeper",
			Name:      "storage_failures_total",
			Help:      "Storage reads and writes that failed and were swallowed.",
		}, []string{"operation"}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crownkeeper",
			Name:      "games_completed_total",
			Help:      "Games that reached their final round.",
		}),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.duration, m.transitions, m.failures, m.storageFailures, m.completed} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register game metrics: %w", err)
		}
	}
	return m, nil
}

func (m *prometheusGameMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.attempts.WithLabelValues(operation).Inc()
}

func (m *prometheusGameMetrics) RecordOperationDuration(_ context.Context, operation string, d time.Duration) {
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *prometheusGameMetrics) RecordTransition(_ context.Context, operation string, changed bool) {
	outcome := "noop"
	if changed {
		outcome = "changed"
	}
	m.transitions.WithLabelValues(operation, outcome).Inc()
}

func (m *prometheusGameMetrics) RecordOperationFailure(_ context.Context, operation string) {
	m.failures.WithLabelValues(operation).Inc()
}

func (m *prometheusGameMetrics) RecordStorageFailure(_ context.Context, operation string) {
	m.storageFailures.WithLabelValues(operation).Inc()
}

func (m *prometheusGameMetrics) RecordGameCompleted(context.Context) {
	m.completed.Inc()
}

// NoOpMetrics satisfies GameMetrics without recording anything.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
func (NoOpMetrics) RecordTransition(context.Context, string, bool)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string)                 {}
func (NoOpMetrics) RecordStorageFailure(context.Context, string)                   {}
func (NoOpMetrics) RecordGameCompleted(context.Context)                            {}

// Push sends everything in g to a Prometheus Pushgateway. An empty url is a no-op.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
