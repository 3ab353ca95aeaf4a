package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"tgcompile/internal/config"
)

// MeterName is the instrumentation scope for tracer and meter
const MeterName = "tgcompile"

// Telemetry holds the tracer and pipeline instruments for one run.
// Signals whose output file is not configured use no-op providers.
type Telemetry struct {
	Tracer  trace.Tracer
	Metrics *PipelineMetrics

	runtime        *RuntimeMetrics
	startTime      time.Time
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *prometheus.Registry
	metricsFile    string
	traceFile      *os.File
	logger         *slog.Logger
}

// PipelineMetrics are the counters recorded by the compile stages
type PipelineMetrics struct {
	FilesDiscovered  metric.Int64Counter
	FilesLoaded      metric.Int64Counter
	FilesSkipped     metric.Int64Counter
	MessagesCompiled metric.Int64Counter
	ViewsCompiled    metric.Int64Counter
	KeywordMatches   metric.Int64Counter
	StageDuration    metric.Float64Histogram
}

// InitializeTelemetry sets up tracing to cfg.TraceFile and Prometheus
// metrics dumped to cfg.MetricsFile on Shutdown.
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(config.AppVersion),
	)

	t := &Telemetry{
		metricsFile: cfg.MetricsFile,
		startTime:   time.Now(),
		logger:      logger,
	}

	if err := t.initializeTracing(cfg, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	meter, err := t.initializeMetrics(cfg, res)
	if err != nil {
		t.closeTraceFile()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	t.Metrics, err = CreatePipelineMetrics(meter)
	if err != nil {
		t.closeTraceFile()
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	if t.meterProvider != nil {
		if t.runtime, err = NewRuntimeMetrics(meter); err != nil {
			t.closeTraceFile()
			return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
		}
	}

	logger.Debug("Telemetry initialized",
		slog.Bool("tracing_enabled", t.tracerProvider != nil),
		slog.Bool("metrics_enabled", t.meterProvider != nil))

	return t, nil
}

// NoopTelemetry returns telemetry that records nothing
func NoopTelemetry() *Telemetry {
	metrics, _ := CreatePipelineMetrics(metricnoop.NewMeterProvider().Meter(MeterName))
	return &Telemetry{
		Tracer:  tracenoop.NewTracerProvider().Tracer(MeterName),
		Metrics: metrics,
		logger:  GetLogger(),
	}
}

// initializeTracing sets up OpenTelemetry tracing
func (t *Telemetry) initializeTracing(cfg config.TelemetryConfig, res *resource.Resource) error {
	if cfg.TraceFile == "" {
		t.Tracer = tracenoop.NewTracerProvider().Tracer(MeterName)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}
	f, err := os.Create(cfg.TraceFile)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	t.traceFile = f
	t.tracerProvider = tp
	t.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
	return nil
}

// initializeMetrics sets up OpenTelemetry metrics on a private Prometheus registry
func (t *Telemetry) initializeMetrics(cfg config.TelemetryConfig, res *resource.Resource) (metric.Meter, error) {
	if cfg.MetricsFile == "" {
		return metricnoop.NewMeterProvider().Meter(MeterName), nil
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	t.registry = registry
	t.meterProvider = mp
	return mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion)), nil
}

// CreatePipelineMetrics creates the compile pipeline instruments
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	var (
		m   PipelineMetrics
		err error
	)

	if m.FilesDiscovered, err = meter.Int64Counter(
		"files_discovered",
		metric.WithDescription("Input files matched by discovery"),
	); err != nil {
		return nil, err
	}
	if m.FilesLoaded, err = meter.Int64Counter(
		"files_loaded",
		metric.WithDescription("Input files loaded and normalized"),
	); err != nil {
		return nil, err
	}
	if m.FilesSkipped, err = meter.Int64Counter(
		"files_skipped",
		metric.WithDescription("Input files skipped, by error type"),
	); err != nil {
		return nil, err
	}
	if m.MessagesCompiled, err = meter.Int64Counter(
		"messages_compiled",
		metric.WithDescription("Rows written to the compiled table"),
	); err != nil {
		return nil, err
	}
	if m.ViewsCompiled, err = meter.Int64Counter(
		"views_compiled",
		metric.WithDescription("Sum of message views in the compiled table"),
	); err != nil {
		return nil, err
	}
	if m.KeywordMatches, err = meter.Int64Counter(
		"keyword_matches",
		metric.WithDescription("Keyword occurrences, by category"),
	); err != nil {
		return nil, err
	}
	if m.StageDuration, err = meter.Float64Histogram(
		"stage_duration_seconds",
		metric.WithDescription("Compile stage duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordSkip counts one skipped file
func (m *PipelineMetrics) RecordSkip(ctx context.Context, errorType string) {
	m.FilesSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("error_type", errorType)))
}

// Shutdown flushes spans and writes the metrics text file
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.runtime != nil {
		stats := t.runtime.Collect(ctx, t.startTime)
		t.logger.Debug("Runtime stats",
			slog.Int64("heap_alloc_bytes", stats.HeapAlloc),
			slog.Int64("total_alloc_bytes", stats.TotalAlloc),
			slog.Uint64("gc_cycles", uint64(stats.GCCount)),
			slog.Duration("run_duration", stats.RunDuration))
	}
	if t.registry != nil && t.metricsFile != "" {
		if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0755); err != nil {
			errs = append(errs, err)
		} else if err := prometheus.WriteToTextfile(t.metricsFile, t.registry); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics file: %w", err))
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := t.closeTraceFile(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (t *Telemetry) closeTraceFile() error {
	if t.traceFile == nil {
		return nil
	}
	err := t.traceFile.Close()
	t.traceFile = nil
	return err
}
