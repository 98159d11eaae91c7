// Package metrics defines the Prometheus collectors of the document library
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors of the service.
type Metrics struct {
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInFlight   prometheus.Gauge
	SearchQueriesTotal     *prometheus.CounterVec
	SearchLatency          *prometheus.HistogramVec
	SearchResultsCount     prometheus.Histogram
	CacheHitsTotal         prometheus.Counter
	CacheMissesTotal       prometheus.Counter
	DocumentsInsertedTotal prometheus.Counter
	DocumentsRemovedTotal  prometheus.Counter
	LibraryDocuments       prometheus.Gauge
	IndexGrams             prometheus.Gauge
	DBusCallsTotal         *prometheus.CounterVec
	EventsPublishedTotal   *prometheus.CounterVec
	IngestMessagesTotal    *prometheus.CounterVec
}

// New creates the collectors and registers them with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors with reg, so tests can use a
// private registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by provider (http, dbus, cli).",
			},
			[]string{"provider"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of search cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of search cache misses.",
			},
		),
		DocumentsInsertedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "library_documents_inserted_total",
				Help: "Total documents inserted into the library.",
			},
		),
		DocumentsRemovedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "library_documents_removed_total",
				Help: "Total documents removed from the library.",
			},
		),
		LibraryDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "library_documents",
				Help: "Number of documents currently indexed.",
			},
		),
		IndexGrams: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_distinct_grams",
				Help: "Number of distinct grams in the search index.",
			},
		),
		DBusCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbus_calls_total",
				Help: "D-Bus search provider calls by method and status.",
			},
			[]string{"method", "status"},
		),
		EventsPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "document_events_published_total",
				Help: "Document lifecycle events published by type and status.",
			},
			[]string{"type", "status"},
		),
		IngestMessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_messages_total",
				Help: "Ingest messages consumed by status (inserted, duplicate, invalid, error).",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DocumentsInsertedTotal,
		m.DocumentsRemovedTotal,
		m.LibraryDocuments,
		m.IndexGrams,
		m.DBusCallsTotal,
		m.EventsPublishedTotal,
		m.IngestMessagesTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
