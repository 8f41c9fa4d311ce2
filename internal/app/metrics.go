package app

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters exported by the application services.
type Metrics struct {
	ExtractionOutcomes *prometheus.CounterVec
	Candidates         *prometheus.CounterVec
	StoreMutations     *prometheus.CounterVec
	RejectedUpdates    prometheus.Counter
	Reorders           *prometheus.CounterVec
	ReorderDuration    prometheus.Histogram
	PendingCandidates  prometheus.Gauge
}

// NewMetrics creates the metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ExtractionOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routeslip_extraction_outcomes_total",
				Help: "Extracted fields by field and outcome",
			},
			[]string{"field", "outcome"},
		),
		Candidates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routeslip_candidates_total",
				Help: "Capture candidates by result (processed, confirmed, discarded)",
			},
			[]string{"result"},
		),
		StoreMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routeslip_store_mutations_total",
				Help: "Durable worklist mutations by operation",
			},
			[]string{"op"},
		),
		RejectedUpdates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "routeslip_rejected_updates_total",
				Help: "Updates rejected by the status rules",
			},
		),
		Reorders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routeslip_reorders_total",
				Help: "Reorder requests by result",
			},
			[]string{"result"},
		),
		ReorderDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "routeslip_reorder_duration_seconds",
				Help:    "Duration of reorder batches",
				Buckets: prometheus.DefBuckets,
			},
		),
		PendingCandidates: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "routeslip_pending_candidates",
				Help: "Candidates awaiting confirmation",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.ExtractionOutcomes,
			m.Candidates,
			m.StoreMutations,
			m.RejectedUpdates,
			m.Reorders,
			m.ReorderDuration,
			m.PendingCandidates,
		)
	}
	return m
}
