// Package observability provides the observability infrastructure of the
// query engine: structured logging, Prometheus metrics, and OpenTelemetry
// tracing.
//
// Subpackages:
//   - logging: structured logging utilities with slog
//   - metrics: Prometheus metrics and recorders
//   - tracing: OpenTelemetry spans around query orchestration
package observability
