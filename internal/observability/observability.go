package observability

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// PushJob is the Pushgateway job name for CLI runs.
const PushJob = "crownkeeper"

// Config selects log output and where metrics go.
type Config struct {
	LogLevel       string
	LogFormat      string
	Environment    string
	PushgatewayURL string
}

// Observability bundles the logger, metrics and tracer handed to modules.
type Observability struct {
	Logger   *slog.Logger
	Metrics  GameMetrics
	Tracer   trace.Tracer
	Registry *prometheus.Registry

	pushgatewayURL string
}

// Init builds the observability stack on a fresh registry. Logs go to w.
func Init(w io.Writer, cfg Config) (Observability, error) {
	logger := NewLogger(w, cfg.LogLevel, cfg.LogFormat)
	if cfg.Environment != "" {
		logger = logger.With(slog.String("env", cfg.Environment))
	}

	registry := prometheus.NewRegistry()
	metrics, err := NewGameMetrics(registry)
	if err != nil {
		return Observability{}, err
	}

	return Observability{
		Logger:         logger,
		Metrics:        metrics,
		Tracer:         Tracer(),
		Registry:       registry,
		pushgatewayURL: cfg.PushgatewayURL,
	}, nil
}

// Flush pushes collected metrics when a Pushgateway is configured.
func (o Observability) Flush(ctx context.Context) error {
	if o.Registry == nil {
		return nil
	}
	return Push(ctx, o.pushgatewayURL, PushJob, o.Registry)
}
