package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Validation tracks compliance-engine metrics.
//
// Metrics:
//   - bioscope_policy_cache_hits_total: fresh cache hits for remote policies
//   - bioscope_policy_cache_misses_total: cache misses (absent, stale, corrupt)
//   - bioscope_policy_fetch_total: remote fetch attempts by outcome
//     (success, stale, error)
//   - bioscope_evaluations_total: record evaluations by result
//     (compliant, non_compliant)
type Validation struct {
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	fetchTotal  *prometheus.CounterVec
	evaluations *prometheus.CounterVec
}

// NewValidation creates and registers validation metrics with the
// provided registry.
func NewValidation(registry *prometheus.Registry) *Validation {
	v := &Validation{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bioscope",
			Name:      "policy_cache_hits_total",
			Help:      "Total number of fresh policy cache hits",
		}),

		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bioscope",
			Name:      "policy_cache_misses_total",
			Help:      "Total number of policy cache misses",
		}),

		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bioscope",
				Name:      "policy_fetch_total",
				Help:      "Total number of remote policy fetch attempts by outcome",
			},
			[]string{"outcome"},
		),

		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bioscope",
				Name:      "evaluations_total",
				Help:      "Total number of metadata record evaluations by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		v.cacheHits,
		v.cacheMisses,
		v.fetchTotal,
		v.evaluations,
	)

	return v
}

// RecordCacheHit records a fresh policy cache hit.
func (v *Validation) RecordCacheHit() {
	v.cacheHits.Inc()
}

// RecordCacheMiss records a policy cache miss.
func (v *Validation) RecordCacheMiss() {
	v.cacheMisses.Inc()
}

// RecordFetch records a remote fetch attempt.
// Outcome is "success", "stale", or "error".
func (v *Validation) RecordFetch(outcome string) {
	v.fetchTotal.WithLabelValues(outcome).Inc()
}

// RecordEvaluation records one record evaluation.
func (v *Validation) RecordEvaluation(compliant bool) {
	result := "compliant"
	if !compliant {
		result = "non_compliant"
	}
	v.evaluations.WithLabelValues(result).Inc()
}
