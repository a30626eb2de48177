// Package telemetry groups the observability concerns of bioscope.
//
// Subpackages:
//   - logging: structured logging built on log/slog
//   - metrics: Prometheus metrics for policy caching, fetching, and
//     record evaluation
package telemetry
