// Package telemetry initializes the OpenTelemetry trace and metric
// providers from application configuration and installs them globally.
// Metrics are always exported through the Prometheus registry scraped at
// /metrics; traces go to Zipkin or an OTLP collector when configured, and
// to stdout otherwise.
package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/dex-monitor/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Config selects the telemetry backends.
type Config struct {
	ServiceName string
	// OTLPEndpoint, when set, exports traces and metrics over OTLP gRPC.
	OTLPEndpoint string
	// ZipkinURL, when set, wins over OTLP for traces.
	ZipkinURL string
}

// Provider owns the installed trace and metric providers.
type Provider struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// Init builds the providers, installs them as the OpenTelemetry globals and
// sets up W3C context propagation.
func Init(ctx context.Context, cfg Config, log logger.LoggerInterface) (*Provider, error) {
	rsrc, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExp, backend, err := traceExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "trace exporter initialized", "backend", backend)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(rsrc),
	)

	readers, err := metricReaders(ctx, cfg)
	if err != nil {
		return nil, err
	}

	metricOpts := []sdkmetric.Option{sdkmetric.WithResource(rsrc)}
	for _, r := range readers {
		metricOpts = append(metricOpts, sdkmetric.WithReader(r))
	}
	mp := sdkmetric.NewMeterProvider(metricOpts...)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Provider{tp: tp, mp: mp}, nil
}

func traceExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, string, error) {
	switch {
	case cfg.ZipkinURL != "":
		exp, err := zipkin.New(cfg.ZipkinURL)
		return exp, "zipkin", err
	case cfg.OTLPEndpoint != "":
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpointURL(cfg.OTLPEndpoint))
		return exp, "otlp", err
	default:
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		return exp, "stdout", err
	}
}

func metricReaders(ctx context.Context, cfg Config) ([]sdkmetric.Reader, error) {
	promExp, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	readers := []sdkmetric.Reader{promExp}

	if cfg.OTLPEndpoint != "" {
		exp, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpointURL(cfg.OTLPEndpoint))
		if err != nil {
			return nil, err
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exp))
	}

	return readers, nil
}

// Shutdown flushes and stops both providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return errors.Join(p.tp.Shutdown(ctx), p.mp.Shutdown(ctx))
}
