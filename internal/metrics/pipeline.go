package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Answer pipeline Prometheus metrics.
var (
	RoutedIntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routed_intents_total",
			Help:      "Questions by routed intent",
		},
		[]string{"intent"},
	)

	BranchOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "branch_outcomes_total",
			Help:      "Retrieval branch outcomes",
		},
		[]string{"branch", "outcome"}, // branch: product|outlet; outcome: ok|empty|unsupported|timeout|error
	)

	GenerationOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_outcomes_total",
			Help:      "Answer generation outcomes",
		},
		[]string{"outcome"}, // ok|retry|fallback
	)

	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Generation call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"provider"},
	)

	GenerationTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_tokens_total",
			Help:      "Total generation tokens consumed",
		},
		[]string{"provider", "model", "type"}, // type: prompt|completion
	)

	TruncatedEvidenceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "truncated_evidence_total",
			Help:      "Evidence items dropped to fit the context budget",
		},
		[]string{"kind"}, // product|outlet
	)
)

var registerPipeline sync.Once

// RegisterPipelineMetrics registers answer pipeline metrics on the default registry.
func RegisterPipelineMetrics() {
	registerPipeline.Do(func() {
		prometheus.MustRegister(
			RoutedIntentsTotal,
			BranchOutcomesTotal,
			GenerationOutcomesTotal,
			GenerationDuration,
			GenerationTokensTotal,
			TruncatedEvidenceTotal,
		)
	})
}
