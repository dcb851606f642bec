// Package telemetry provides the OpenTelemetry TracerProvider for the client.
// Tracing is opt-in: spans are exported as human-readable lines on stderr when
// enabled, and a no-op provider is installed otherwise.
package telemetry

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// Provider holds the TracerProvider and a shutdown function that flushes
// pending spans. Shutdown is safe to call on a disabled provider.
type Provider struct {
	TracerProvider *sdktrace.TracerProvider
	Shutdown       func(context.Context) error
}

// Setup configures the global TracerProvider. When enabled is false a no-op
// provider is installed so instrumented code needs no conditionals.
func Setup(serviceName string, enabled bool) (*Provider, error) {
	if !enabled {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return &Provider{
			TracerProvider: tp,
			Shutdown:       func(context.Context) error { return nil },
		}, nil
	}

	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(os.Stderr),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Provider{
		TracerProvider: tp,
		Shutdown:       tp.Shutdown,
	}, nil
}
