package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"stockviz/internal/config"
	"stockviz/pkg/contracts"
)

// MeterName is the instrumentation scope of every tracer and meter created here.
const MeterName = "stockviz"

// Telemetry holds the OpenTelemetry providers and the Prometheus registry
// their metrics are exported to.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *prometheus.Registry
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *PipelineMetrics

	logger *slog.Logger
}

// InitializeTelemetry sets up tracing (spans written as JSON to traceOut when
// the stdout exporter is selected) and metrics exported into a private
// Prometheus registry.
func InitializeTelemetry(cfg config.TelemetryConfig, traceOut io.Writer, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(contracts.Version),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	)

	tel := &Telemetry{
		Registry: prometheus.NewRegistry(),
		logger:   logger,
	}

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(traceOut),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tel.TracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tel.TracerProvider)
		tel.Tracer = tel.TracerProvider.Tracer(MeterName, trace.WithInstrumentationVersion(contracts.Version))
	case "none", "":
		tel.Tracer = tracenoop.NewTracerProvider().Tracer(MeterName)
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	exporter, err := otelprom.New(otelprom.WithRegisterer(tel.Registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	tel.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(tel.MeterProvider)
	tel.Meter = tel.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(contracts.Version))

	tel.Metrics, err = NewPipelineMetrics(tel.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	logger.DebugContext(ctx, "telemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("trace_exporter", cfg.TraceExporter))

	return tel, nil
}

// MetricsHandler serves the registry in the Prometheus exposition format.
func (t *Telemetry) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(t.Registry, promhttp.HandlerOpts{})
}

// WriteMetricsFile writes the registry in the node_exporter textfile format.
func (t *Telemetry) WriteMetricsFile(path string) error {
	if err := prometheus.WriteToTextfile(path, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", path, err)
	}
	t.logger.Debug("metrics written", slog.String("path", path))
	return nil
}

// Shutdown flushes pending spans and stops the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.TracerProvider != nil {
		errs = append(errs, t.TracerProvider.Shutdown(ctx))
	}
	if t.MeterProvider != nil {
		errs = append(errs, t.MeterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// PipelineMetrics are the instruments recorded for every pipeline run.
type PipelineMetrics struct {
	runs     metric.Int64Counter
	failures metric.Int64Counter
	records  metric.Int64Counter
	duration metric.Float64Histogram
}

// NewPipelineMetrics creates the pipeline instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	runs, err := meter.Int64Counter(
		"stockviz_pipeline_runs",
		metric.WithDescription("Total number of pipeline runs"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"stockviz_pipeline_failures",
		metric.WithDescription("Total number of failed pipeline runs by error type"),
	)
	if err != nil {
		return nil, err
	}

	records, err := meter.Int64Counter(
		"stockviz_records_loaded",
		metric.WithDescription("Total number of stock records loaded"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"stockviz_pipeline_duration",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		runs:     runs,
		failures: failures,
		records:  records,
		duration: duration,
	}, nil
}

// RecordRun records one finished run. errType is empty on success.
func (m *PipelineMetrics) RecordRun(ctx context.Context, operation string, records int, elapsed time.Duration, errType string) {
	if m == nil {
		return
	}
	outcome := "success"
	if errType != "" {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)

	m.runs.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
	if records > 0 {
		m.records.Add(ctx, int64(records), metric.WithAttributes(attribute.String("operation", operation)))
	}
	if errType != "" {
		m.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("error_type", errType),
		))
	}
}
