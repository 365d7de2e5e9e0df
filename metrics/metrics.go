package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalyzedTotal counts report analyses by outcome.
	AnalyzedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "creditengine",
		Subsystem: "analyzer",
		Name:      "reports_analyzed_total",
		Help:      "Total number of report analyses, labeled by result.",
	}, []string{"result"})

	// AnalysisDurationSeconds is the end-to-end parse-and-persist time.
	AnalysisDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "creditengine",
		Subsystem: "analyzer",
		Name:      "analysis_duration_seconds",
		Help:      "End-to-end time to parse a report and persist its derived records.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	// NegativeItemsFound counts negative items per analyzed report.
	NegativeItemsFound = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "creditengine",
		Subsystem: "analyzer",
		Name:      "negative_items_per_report",
		Help:      "Number of negative items found per analyzed report.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
	})

	// DiscrepanciesFound counts cross-bureau discrepancies per client recompute.
	DiscrepanciesFound = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "creditengine",
		Subsystem: "analyzer",
		Name:      "discrepancies_per_client",
		Help:      "Number of cross-bureau discrepancies found per client recompute.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
	})

	// PublishErrorTotal counts failed result publishes.
	PublishErrorTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "creditengine",
		Subsystem: "analyzer",
		Name:      "publish_error_total",
		Help:      "Total number of analyzed-report publish errors.",
	})

	// GateViolationsTotal counts dispute-policy violations by reason code.
	GateViolationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "creditengine",
		Subsystem: "policy",
		Name:      "gate_violations_total",
		Help:      "Total number of dispute-policy violations surfaced by the gate.",
	}, []string{"reason"})
)

// Register registers engine metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalyzedTotal,
			AnalysisDurationSeconds,
			NegativeItemsFound,
			DiscrepanciesFound,
			PublishErrorTotal,
			GateViolationsTotal,
		)
	})
}
