// Package otel configures the OpenTelemetry trace pipeline shared by
// ironlog processes.
package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config describes the trace pipeline. Tracing is opt-in: with Enabled
// false or an empty Endpoint no global provider is registered and the
// rest of the process runs on the default no-op tracer.
type Config struct {
	ServiceName string
	Endpoint    string
	Enabled     bool
}

func (c Config) active() bool {
	return c.Enabled && c.Endpoint != ""
}

// ShutdownFunc flushes pending spans. Callers defer it.
type ShutdownFunc func(context.Context) error

// Setup installs the global tracer provider described by cfg and returns
// its shutdown function. The returned function is never nil.
func Setup(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.Endpoint),
	)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
