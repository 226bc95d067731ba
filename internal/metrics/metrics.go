// Package metrics defines Prometheus metrics for the DCB clustering core.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dcb_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dcb_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dcb_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	IngestOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dcb_ingest_records_total",
			Help: "Ingested records by outcome (clustered, dropped_title, retired, noop)",
		},
		[]string{"outcome"},
	)

	ClustersMerged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dcb_clusters_merged_total",
			Help: "Clusters absorbed into a winner during reduction",
		},
	)

	ClustersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dcb_clusters_created_total",
			Help: "Brand-new clusters created for unmatched bibs",
		},
	)

	ClusterRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dcb_cluster_bib_retries_total",
			Help: "Clustering passes retried after a write conflict",
		},
	)

	IngestQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dcb_ingest_queue_depth",
			Help: "Current async ingest queue depth",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dcb_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		IngestOutcomes, ClustersMerged, ClustersCreated, ClusterRetries,
		IngestQueueDepth, WSConnections,
	)
}
