// Package metrics exposes Prometheus metrics for the compliance engine:
// policy cache hits and misses, remote fetch outcomes, and record
// evaluations.
//
// Metrics are registered against a caller-provided registry so tests and
// embedders control exposure. All recording methods are safe for
// concurrent use.
package metrics
