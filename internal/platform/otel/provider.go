// Package otel wires OpenTelemetry tracing for lolworlds binaries.
package otel

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/lolworlds/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type traceConfig struct {
	Endpoint    string  `env:"LOLWORLDS_OTEL_ENDPOINT"`
	Enabled     string  `env:"LOLWORLDS_OTEL_ENABLED"`
	SampleRatio float64 `env:"LOLWORLDS_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

func (c traceConfig) active() bool {
	return !strings.EqualFold(strings.TrimSpace(c.Enabled), "false") && strings.TrimSpace(c.Endpoint) != ""
}

// Setup installs a global tracer provider for serviceName.
//
// Tracing is opt-in: with no LOLWORLDS_OTEL_ENDPOINT, or with
// LOLWORLDS_OTEL_ENABLED=false, the global provider stays the no-op default
// and the returned shutdown does nothing.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	var cfg traceConfig
	if err := config.ParseEnv(&cfg); err != nil {
		return noop, err
	}
	if !cfg.active() {
		return noop, nil
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		return noop, fmt.Errorf("otel sample ratio must be within [0, 1], got %v", cfg.SampleRatio)
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(strings.TrimSpace(cfg.Endpoint)))
	if err != nil {
		return noop, fmt.Errorf("otlp exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, fmt.Errorf("otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}
