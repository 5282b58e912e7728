package observability

import "go.opentelemetry.io/otel"

// Tracer is the process-wide tracer. Without a configured provider otel hands
// out a no-op implementation.
var Tracer = otel.Tracer("dts2as")
