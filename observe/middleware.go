package observe

import (
	"context"
	"errors"
	"time"
)

// ExecuteFunc is the signature of an instrumented cache operation. It returns
// the number of entries the operation produced or touched.
type ExecuteFunc func(ctx context.Context, op Operation) (int, error)

// Middleware wraps cache operations with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped function are recorded and propagated unchanged.
type Middleware struct {
	tracer   Tracer
	metrics  Metrics
	logger   Logger
	expected []error
}

// NewMiddleware creates a new Middleware with the given observability components.
// Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Logger returns the logger the middleware writes to.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// WithExpectedErrors returns a copy of the middleware that logs errors
// matching any of errs at debug level, as outcomes rather than failures.
// Spans and metrics still record them.
func (m *Middleware) WithExpectedErrors(errs ...error) *Middleware {
	cp := *m
	cp.expected = append(append([]error(nil), m.expected...), errs...)
	return &cp
}

func (m *Middleware) isExpected(err error) bool {
	for _, e := range m.expected {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// Wrap wraps an ExecuteFunc with tracing, metrics, and logging. Extra fields
// are attached to the completion log entry.
func (m *Middleware) Wrap(fn ExecuteFunc, fields ...Field) ExecuteFunc {
	return func(ctx context.Context, op Operation) (int, error) {
		ctx, span := m.tracer.StartSpan(ctx, op)
		start := time.Now()

		entries, err := fn(ctx, op)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordOperation(ctx, op, duration, entries, err)

		opLogger := m.logger.WithOperation(op)
		logFields := make([]Field, 0, len(fields)+3)
		logFields = append(logFields, fields...)
		logFields = append(logFields,
			Field{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
			Field{Key: "entries", Value: entries},
		)

		switch {
		case err != nil && m.isExpected(err):
			logFields = append(logFields, Field{Key: "error", Value: err.Error()})
			opLogger.Debug(ctx, "cache operation completed", logFields...)
		case err != nil:
			logFields = append(logFields, Field{Key: "error", Value: err.Error()})
			opLogger.Error(ctx, "cache operation failed", logFields...)
		default:
			opLogger.Debug(ctx, "cache operation completed", logFields...)
		}

		return entries, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return NewMiddleware(nil, nil, nil), nil
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
