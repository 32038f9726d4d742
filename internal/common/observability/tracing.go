package observability

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// EnableTracing installs an SDK tracer provider sampled at ratio. Spans are
// shipped to the Jaeger collector at endpoint when one is given.
func (o *Observability) EnableTracing(serviceName, endpoint string, ratio float64) error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		)),
	}

	if endpoint != "" {
		exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
		if err != nil {
			return fmt.Errorf("create jaeger exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	o.useTracerProvider(sdktrace.NewTracerProvider(opts...), serviceName)
	return nil
}

func (o *Observability) useTracerProvider(tp *sdktrace.TracerProvider, serviceName string) {
	otel.SetTracerProvider(tp)
	o.tracerProvider = tp
	o.tracer = tp.Tracer(serviceName)
}
