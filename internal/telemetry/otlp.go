// Package telemetry installs the global OpenTelemetry tracer provider.
package telemetry

import (
	"context"

	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/coastmove/atoll-dashboard/internal/config"
)

// ShutdownFunc flushes pending spans and stops the exporter.
type ShutdownFunc func(context.Context) error

// Setup exports spans over OTLP/HTTP when cfg.OTLPEndpoint is set. With no
// endpoint the global provider is left alone and the returned shutdown is
// a no-op.
func Setup(ctx context.Context, cfg config.TelemetryConfig) (ShutdownFunc, error) {
	if cfg.OTLPEndpoint == "" {
		zap.L().Debug("telemetry: otlp endpoint not set, tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "telemetry: create otlp exporter")
	}

	name := cfg.ServiceName
	if name == "" {
		name = "atoll-dashboard"
	}
	res := resource.NewSchemaless(attribute.String("service.name", name))

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	zap.L().Info("telemetry: exporting traces",
		zap.String("endpoint", cfg.OTLPEndpoint),
		zap.String("service", name),
	)

	return func(ctx context.Context) error {
		if err := provider.Shutdown(ctx); err != nil {
			return eris.Wrap(err, "telemetry: shutdown tracer provider")
		}
		return nil
	}, nil
}
