package jaeger

import (
	"fmt"

	"go.opentelemetry.io/otel/exporters/jaeger"
)

// NewExporter creates an exporter sending spans to a Jaeger collector, e.g.
// http://jaeger:14268/api/traces.
func NewExporter(collectorEndpoint string) (*jaeger.Exporter, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(
		jaeger.WithEndpoint(collectorEndpoint),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create jaeger exporter: %w", err)
	}

	return exp, nil
}
