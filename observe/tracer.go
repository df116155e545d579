package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Operation describes a cache operation for telemetry purposes.
type Operation struct {
	Name     string // Operation name, e.g. "read_credentials" (required)
	Family   string // Schema family the operation touches (optional)
	ClientID string // Client application the lookup is scoped to (optional)
}

// SpanName returns the deterministic span name for this operation.
// Format: cache.op.<family>.<name> or cache.op.<name>
func (o Operation) SpanName() string {
	return "cache.op." + o.ID()
}

// ID returns the qualified operation identifier, <family>.<name> or <name>.
func (o Operation) ID() string {
	if o.Family != "" {
		return o.Family + "." + o.Name
	}
	return o.Name
}

// Validate reports whether the operation carries a name.
func (o Operation) Validate() error {
	if o.Name == "" {
		return ErrMissingOperationName
	}
	return nil
}

func (o Operation) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("cache.op", o.ID()),
	}
	if o.Family != "" {
		attrs = append(attrs, attribute.String("cache.family", o.Family))
	}
	if o.ClientID != "" {
		attrs = append(attrs, attribute.String("cache.client_id", o.ClientID))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with cache-operation span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a cache operation.
	StartSpan(ctx context.Context, op Operation) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with operation metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, op Operation) (context.Context, trace.Span) {
	attrs := append(op.attributes(), attribute.Bool("cache.error", false))

	return t.tracer.Start(ctx, op.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("cache.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, op Operation) (context.Context, trace.Span) {
	return t.noop.Start(ctx, op.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
