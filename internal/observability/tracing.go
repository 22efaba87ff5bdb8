package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for game spans.
const TracerName = "github.com/Black-And-White-Club/crownkeeper"

// Tracer returns a tracer from the globally registered provider. Without a
// configured provider the spans are no-ops.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
