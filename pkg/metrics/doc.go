/*
Package metrics provides Prometheus metrics collection and exposition for the
ledger.

The package defines and registers every metric using the Prometheus client
library, giving observability into mutation throughput, propagation cost,
checkpoint behavior, and report latency. Metrics are exposed over HTTP for
scraping by a Prometheus server.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                  │          │
	│  │                                              │          │
	│  │  Mutate: duration, mutation kind            │          │
	│  │  Propagation: chain length, auto-issue      │          │
	│  │  Checkpoint: rollovers written/pruned       │          │
	│  │  Report: query duration by kind             │          │
	│  │  Storage: database size                     │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint               │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Metrics Catalog

ledger_mutate_duration_seconds:
  - Type: Histogram
  - Description: Duration of one Mutate() transaction (all mutations in the batch)

ledger_mutations_total{kind}:
  - Type: Counter
  - Labels: kind ("new", "edit", "delete")
  - Description: Total mutations applied, by kind

ledger_propagation_chain_length:
  - Type: Histogram
  - Buckets: 0, 1, 2, 5, 10, 25, 50, 100, 250
  - Description: Number of downstream ops recomputed per mutation by the forward walk

ledger_auto_issue_resolutions_total:
  - Type: Counter
  - Description: Total auto-issue cost resolutions performed (initial or cascaded)

ledger_checkpoint_rollovers_total{outcome}:
  - Type: Counter
  - Labels: outcome ("written", "pruned")
  - Description: Total checkpoint balance writes, split between retained and eagerly-pruned zeros

ledger_report_duration_seconds{query}:
  - Type: Histogram
  - Labels: query ("report", "report_for_storage", "balance_for_all")
  - Description: Duration of a read-side query

ledger_database_size_bytes:
  - Type: Gauge
  - Description: Size in bytes of the bbolt database file on disk

# Usage

	import "github.com/digitaiam/wh-ledger/pkg/metrics"

	timer := metrics.NewTimer()
	err := ledger.Mutate(mutations)
	timer.ObserveDuration(metrics.MutateDuration)

	metrics.MutationsTotal.WithLabelValues("new").Inc()
	metrics.CheckpointRolloversTotal.WithLabelValues("pruned").Inc()

	timer2 := metrics.NewTimer()
	line, err := ledger.GetReport(store, goods, batch, from, to)
	timer2.ObserveDurationVec(metrics.ReportDuration, "report")

	http.Handle("/metrics", metrics.Handler())

# Integration Points

  - pkg/propagate: observes PropagationChainLength, AutoIssueResolutionsTotal
  - pkg/checkpoint: observes CheckpointRolloversTotal
  - pkg/storage: observes MutateDuration, MutationsTotal, ReportDuration, DatabaseSizeBytes
  - Collector: polls DatabaseSizeBytes on a ticker so size is visible even
    between mutations

# Design Patterns

Package Init Registration:
  - All metrics registered in init()
  - MustRegister panics on duplicate registration

Label Discipline:
  - kind/outcome/query labels are closed, small enumerations
  - no identifiers (store, goods, batch, op) ever become label values

# See Also

  - Prometheus client library: https://github.com/prometheus/client_golang
  - Histogram best practices: https://prometheus.io/docs/practices/histograms/
*/
package metrics
