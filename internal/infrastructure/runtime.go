package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics are process gauges sampled once when a run finishes
type RuntimeMetrics struct {
	goroutines  metric.Int64Gauge
	heapAlloc   metric.Int64Gauge
	totalAlloc  metric.Int64Gauge
	memorySys   metric.Int64Gauge
	gcCount     metric.Int64Gauge
	runDuration metric.Float64Gauge
}

// RuntimeStats is one sample of the Go runtime
type RuntimeStats struct {
	GoRoutines  int64
	HeapAlloc   int64
	TotalAlloc  int64
	MemorySys   int64
	GCCount     uint32
	RunDuration time.Duration
}

// NewRuntimeMetrics creates the runtime gauges on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	var (
		rm  RuntimeMetrics
		err error
	)

	if rm.goroutines, err = meter.Int64Gauge(
		"runtime_goroutines",
		metric.WithDescription("Number of goroutines at the end of the run"),
	); err != nil {
		return nil, err
	}
	if rm.heapAlloc, err = meter.Int64Gauge(
		"runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if rm.totalAlloc, err = meter.Int64Gauge(
		"runtime_total_alloc_bytes",
		metric.WithDescription("Cumulative bytes allocated during the run"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if rm.memorySys, err = meter.Int64Gauge(
		"runtime_memory_sys_bytes",
		metric.WithDescription("Bytes of memory obtained from the OS"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if rm.gcCount, err = meter.Int64Gauge(
		"runtime_gc_cycles",
		metric.WithDescription("Completed GC cycles"),
	); err != nil {
		return nil, err
	}
	if rm.runDuration, err = meter.Float64Gauge(
		"run_duration_seconds",
		metric.WithDescription("Wall time from telemetry start to shutdown"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return &rm, nil
}

// Collect samples the runtime and records the gauges
func (rm *RuntimeMetrics) Collect(ctx context.Context, startTime time.Time) RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := RuntimeStats{
		GoRoutines:  int64(runtime.NumGoroutine()),
		HeapAlloc:   int64(memStats.HeapAlloc),
		TotalAlloc:  int64(memStats.TotalAlloc),
		MemorySys:   int64(memStats.Sys),
		GCCount:     memStats.NumGC,
		RunDuration: time.Since(startTime),
	}

	rm.goroutines.Record(ctx, stats.GoRoutines)
	rm.heapAlloc.Record(ctx, stats.HeapAlloc)
	rm.totalAlloc.Record(ctx, stats.TotalAlloc)
	rm.memorySys.Record(ctx, stats.MemorySys)
	rm.gcCount.Record(ctx, int64(stats.GCCount))
	rm.runDuration.Record(ctx, stats.RunDuration.Seconds())

	return stats
}
