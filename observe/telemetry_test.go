package observe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()

	found := findMetric(rm, name)
	if found == nil {
		return 0
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, found.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestOperation_SpanName(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{op: Operation{Name: "read", Family: "Credential"}, want: "cache.op.Credential.read"},
		{op: Operation{Name: "clear"}, want: "cache.op.clear"},
	}
	for _, tc := range tests {
		if got := tc.op.SpanName(); got != tc.want {
			t.Errorf("SpanName() = %q, want %q", got, tc.want)
		}
	}
}

func TestOperation_Validate(t *testing.T) {
	if err := (Operation{}).Validate(); !errors.Is(err, ErrMissingOperationName) {
		t.Errorf("Validate() error = %v, want %v", err, ErrMissingOperationName)
	}
	if err := (Operation{Name: "read"}).Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestTracer_SpanAttributesAndErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tr := NewTracer(tp.Tracer("test"))

	op := Operation{Name: "read_credentials", Family: "Credential", ClientID: "app1"}
	_, span := tr.StartSpan(context.Background(), op)
	tr.EndSpan(span, errors.New("boom"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "cache.op.Credential.read_credentials" {
		t.Errorf("span name = %q", s.Name())
	}
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", s.Status().Code)
	}

	attrs := make(map[attribute.Key]attribute.Value)
	for _, a := range s.Attributes() {
		attrs[a.Key] = a.Value
	}
	if attrs["cache.op"].AsString() != "Credential.read_credentials" {
		t.Errorf("cache.op = %v", attrs["cache.op"])
	}
	if attrs["cache.client_id"].AsString() != "app1" {
		t.Errorf("cache.client_id = %v", attrs["cache.client_id"])
	}
	if !attrs["cache.error"].AsBool() {
		t.Error("expected cache.error=true")
	}
}

func TestMetrics_RecordOperation(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	ctx := context.Background()
	op := Operation{Name: "read_accounts", Family: "Account"}
	m.RecordOperation(ctx, op, 2*time.Millisecond, 3, nil)
	m.RecordOperation(ctx, op, time.Millisecond, 0, errors.New("store down"))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if got := sumValue(t, rm, "cache.op.total"); got != 2 {
		t.Errorf("cache.op.total = %d, want 2", got)
	}
	if got := sumValue(t, rm, "cache.op.errors"); got != 1 {
		t.Errorf("cache.op.errors = %d, want 1", got)
	}
	if findMetric(rm, "cache.op.duration_ms") == nil {
		t.Error("cache.op.duration_ms not recorded")
	}

	entries := findMetric(rm, "cache.op.entries")
	if entries == nil {
		t.Fatal("cache.op.entries not recorded")
	}
	hist, ok := entries.Data.(metricdata.Histogram[int64])
	if !ok {
		t.Fatalf("expected Histogram[int64], got %T", entries.Data)
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Sum != 3 {
		t.Errorf("unexpected entries histogram: %+v", hist.DataPoints)
	}
}

func TestMiddleware_Wrap(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	var buf bytes.Buffer
	mw := NewMiddleware(NewTracer(tp.Tracer("test")), metrics, NewLoggerWithWriter("debug", &buf))

	wantErr := errors.New("not found")
	fn := mw.Wrap(func(ctx context.Context, op Operation) (int, error) {
		if op.Name == "fail" {
			return 0, wantErr
		}
		return 2, nil
	}, Field{Key: "correlation_id", Value: "c1"})

	ctx := context.Background()
	if n, err := fn(ctx, Operation{Name: "ok"}); err != nil || n != 2 {
		t.Fatalf("wrapped ok = (%d, %v)", n, err)
	}
	if _, err := fn(ctx, Operation{Name: "fail"}); !errors.Is(err, wantErr) {
		t.Fatalf("wrapped fail error = %v, want %v", err, wantErr)
	}

	if got := len(recorder.Ended()); got != 2 {
		t.Errorf("expected 2 spans, got %d", got)
	}

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0]["level"] != "debug" || entries[1]["level"] != "error" {
		t.Errorf("levels = %v, %v", entries[0]["level"], entries[1]["level"])
	}
	if entries[1]["error"] != "not found" {
		t.Errorf("error field = %v", entries[1]["error"])
	}
	if entries[0]["correlation_id"] != "c1" {
		t.Errorf("correlation_id = %v", entries[0]["correlation_id"])
	}
	if entries[0]["entries"] != float64(2) {
		t.Errorf("entries = %v", entries[0]["entries"])
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got := sumValue(t, rm, "cache.op.errors"); got != 1 {
		t.Errorf("cache.op.errors = %d, want 1", got)
	}
}

func TestMiddleware_ExpectedErrorsLogAtDebug(t *testing.T) {
	miss := errors.New("entry not found")
	boom := errors.New("store down")

	tests := []struct {
		name      string
		level     string
		err       error
		wantLevel string
		wantLines int
	}{
		{name: "expected at debug", level: "debug", err: fmt.Errorf("lookup: %w", miss), wantLevel: "debug", wantLines: 1},
		{name: "expected hidden at info", level: "info", err: miss, wantLines: 0},
		{name: "unexpected", level: "info", err: boom, wantLevel: "error", wantLines: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := NewMiddleware(nil, nil, NewLoggerWithWriter(tt.level, &buf))
			mw := base.WithExpectedErrors(miss)

			fn := mw.Wrap(func(ctx context.Context, op Operation) (int, error) { return 0, tt.err })
			if _, err := fn(context.Background(), Operation{Name: "read_account"}); !errors.Is(err, tt.err) {
				t.Fatalf("wrapped error = %v, want %v", err, tt.err)
			}

			entries := decodeLines(t, &buf)
			if len(entries) != tt.wantLines {
				t.Fatalf("got %d log lines, want %d: %s", len(entries), tt.wantLines, buf.String())
			}
			if tt.wantLines == 1 && entries[0]["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entries[0]["level"], tt.wantLevel)
			}
			if len(base.expected) != 0 {
				t.Error("WithExpectedErrors must not modify the receiver")
			}
		})
	}
}

func TestMiddleware_NilComponentsAreNoops(t *testing.T) {
	mw := NewMiddleware(nil, nil, nil)
	fn := mw.Wrap(func(ctx context.Context, op Operation) (int, error) { return 1, nil })

	if n, err := fn(context.Background(), Operation{Name: "noop"}); err != nil || n != 1 {
		t.Fatalf("wrapped = (%d, %v)", n, err)
	}
}

func TestMiddlewareFromObserver(t *testing.T) {
	mw, err := MiddlewareFromObserver(NewNopObserver())
	if err != nil {
		t.Fatalf("MiddlewareFromObserver() error = %v", err)
	}
	if mw.Logger() == nil {
		t.Fatal("expected non-nil logger")
	}

	mw, err = MiddlewareFromObserver(nil)
	if err != nil || mw == nil {
		t.Fatalf("MiddlewareFromObserver(nil) = (%v, %v)", mw, err)
	}
}
