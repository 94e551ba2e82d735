// Package metrics provides Prometheus instrumentation for the
// ingestion pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all ingestor Prometheus metrics.
type Metrics struct {
	// RecordsRead counts raw records decoded from archives.
	RecordsRead prometheus.Counter
	// RecordsFiltered counts records dropped by the normalizer gates.
	RecordsFiltered prometheus.Counter
	// DocumentsInserted counts documents accepted by the store.
	DocumentsInserted prometheus.Counter
	// DocumentsDuplicate counts documents rejected as already present.
	DocumentsDuplicate prometheus.Counter
	// BatchRetries counts batch write re-attempts after transient failures.
	BatchRetries prometheus.Counter
	// BatchesAbandoned counts batches dropped after retry exhaustion.
	BatchesAbandoned prometheus.Counter
	// DaysProcessed counts completed orchestrator day iterations.
	DaysProcessed prometheus.Counter
	// QuotaHalts counts runs stopped by the storage quota guard.
	QuotaHalts prometheus.Counter
}

// New creates the metric set on the given registerer. Tests pass a
// fresh registry to avoid duplicate-registration panics from the
// global one.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingestor_records_read_total",
			Help: "Total raw records decoded from archives",
		}),
		RecordsFiltered: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingestor_records_filtered_total",
			Help: "Total records dropped by language or keyword gates",
		}),
		DocumentsInserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingestor_documents_inserted_total",
			Help: "Total documents accepted by the document store",
		}),
		DocumentsDuplicate: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingestor_documents_duplicate_total",
			Help: "Total documents rejected for an existing identity",
		}),
		BatchRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingestor_batch_retries_total",
			Help: "Total batch write re-attempts after transient failures",
		}),
		BatchesAbandoned: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingestor_batches_abandoned_total",
			Help: "Total batches abandoned after the retry budget ran out",
		}),
		DaysProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingestor_days_processed_total",
			Help: "Total completed day iterations",
		}),
		QuotaHalts: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingestor_quota_halts_total",
			Help: "Total runs halted by the storage quota guard",
		}),
	}
}

// NewDefault creates the metric set on the default registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

// Handler returns the Prometheus HTTP handler for a /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
