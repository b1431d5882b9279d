package gate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gate's Prometheus instrumentation.
type Metrics struct {
	Decisions  *prometheus.CounterVec
	CacheHits  prometheus.Counter
	CacheMiss  prometheus.Counter
	PipePanics prometheus.Counter
}

// NewMetrics registers gate metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gymgate_decisions_total",
			Help: "Gate decisions by outcome and matched rule.",
		}, []string{"outcome", "rule"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "gymgate_decision_cache_hits_total",
			Help: "Decision cache hits.",
		}),
		CacheMiss: factory.NewCounter(prometheus.CounterOpts{
			Name: "gymgate_decision_cache_misses_total",
			Help: "Decision cache misses.",
		}),
		PipePanics: factory.NewCounter(prometheus.CounterOpts{
			Name: "gymgate_pipeline_panics_total",
			Help: "Recovered panics in the decision pipeline.",
		}),
	}
}
