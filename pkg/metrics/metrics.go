package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MutateDuration times a single Mutate() call, start to commit.
	MutateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_mutate_duration_seconds",
			Help:    "Time taken to apply a mutation batch in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// MutationsTotal counts applied mutations by kind (new/edit/delete).
	MutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_mutations_total",
			Help: "Total number of mutations applied, by kind",
		},
		[]string{"kind"},
	)

	// PropagationChainLength records how many downstream ops a single
	// mutation's forward walk touched.
	PropagationChainLength = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_propagation_chain_length",
			Help:    "Number of downstream ops touched by one mutation's forward propagation",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	// AutoIssueResolutionsTotal counts auto-issue cost resolutions.
	AutoIssueResolutionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_auto_issue_resolutions_total",
			Help: "Total number of auto-issue unit costs resolved from batch balance",
		},
	)

	// CheckpointRolloversTotal counts checkpoint entries written or pruned.
	CheckpointRolloversTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_checkpoint_rollovers_total",
			Help: "Total number of checkpoint entries written or pruned, by outcome",
		},
		[]string{"outcome"}, // "written" or "pruned"
	)

	// ReportDuration times a report read (GetReport / GetReportForStorage).
	ReportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_report_duration_seconds",
			Help:    "Time taken to answer a report query in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"}, // "report", "report_for_storage", "balance_for_all"
	)

	// DatabaseSizeBytes tracks the on-disk size of the ledger database file.
	DatabaseSizeBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_database_size_bytes",
			Help: "Size of the ledger database file in bytes",
		},
	)
)

func init() {
	prometheus.MustRegister(MutateDuration)
	prometheus.MustRegister(MutationsTotal)
	prometheus.MustRegister(PropagationChainLength)
	prometheus.MustRegister(AutoIssueResolutionsTotal)
	prometheus.MustRegister(CheckpointRolloversTotal)
	prometheus.MustRegister(ReportDuration)
	prometheus.MustRegister(DatabaseSizeBytes)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
