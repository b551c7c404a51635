// Package metrics registers the ingestion counters exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles all pipeline counters.
type Metrics struct {
	PagesFetched    prometheus.Counter
	FetchFailures   prometheus.Counter
	ResultsIngested *prometheus.CounterVec
	SplitsIngested  *prometheus.CounterVec
	RowsSkipped     prometheus.Counter
	Documents       *prometheus.CounterVec
	Scrapes         *prometheus.CounterVec
}

// New registers all counters on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "aquafeed_pages_fetched_total",
			Help: "Result/program/swimmer pages fetched from the live site.",
		}),
		FetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "aquafeed_fetch_failures_total",
			Help: "Page fetches that failed or returned a non-2xx status.",
		}),
		ResultsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aquafeed_results_ingested_total",
			Help: "Result rows written to the canonical schema.",
		}, []string{"source"}),
		SplitsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aquafeed_splits_ingested_total",
			Help: "Split rows written to the canonical schema.",
		}, []string{"source"}),
		RowsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "aquafeed_rows_skipped_total",
			Help: "Scraped table rows dropped by the row extractor.",
		}),
		Documents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aquafeed_lenex_documents_total",
			Help: "Structured documents processed, by outcome.",
		}, []string{"outcome"}),
		Scrapes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aquafeed_scrapes_total",
			Help: "Competition scrapes run, by outcome.",
		}, []string{"outcome"}),
	}
}

// NewDefault registers on the default prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

// NewForTest registers on a private registry, for use in tests.
func NewForTest() *Metrics {
	return New(prometheus.NewRegistry())
}
