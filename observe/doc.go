// Package observe provides observability primitives for credential cache
// operations.
//
// It is a pure instrumentation library: OpenTelemetry tracing and metrics, a
// JSON structured logger that redacts secret-bearing fields, and a middleware
// that wraps a cache operation with all three. Consumers wire the observer into
// the cache manager.
package observe
