package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metrics records cache operation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOperation records one cache operation: its duration, how many
	// entries it returned or touched, and its error status.
	RecordOperation(ctx context.Context, op Operation, duration time.Duration, entries int, err error)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	entriesHist  metric.Int64Histogram
}

// NewMetrics creates a Metrics instance backed by the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"cache.op.total",
		metric.WithDescription("Total number of cache operations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"cache.op.errors",
		metric.WithDescription("Total number of failed cache operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"cache.op.duration_ms",
		metric.WithDescription("Cache operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	entriesHist, err := meter.Int64Histogram(
		"cache.op.entries",
		metric.WithDescription("Entries returned or touched per cache operation"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		entriesHist:  entriesHist,
	}, nil
}

func (m *metricsImpl) RecordOperation(ctx context.Context, op Operation, duration time.Duration, entries int, err error) {
	opt := metric.WithAttributes(op.attributes()...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
	m.entriesHist.Record(ctx, int64(entries), opt)
}

type noopMetrics struct{}

func (m *noopMetrics) RecordOperation(ctx context.Context, op Operation, duration time.Duration, entries int, err error) {
}
