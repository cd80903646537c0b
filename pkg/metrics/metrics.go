package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Global metric definitions. 'promauto' registers everything against the
// default registry without extra initialization.

var (
	// Queries processed through the text query interface, by outcome.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kraphdb_queries_total",
			Help: "Total number of queries processed",
		},
		[]string{"status"}, // ok, lex_error, parse_error, exec_error
	)

	// End-to-end query latency (tokenize + parse + execute).
	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kraphdb_query_duration_seconds",
			Help:    "Duration of query execution in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// CRUD operations routed through the Engine, by operation name.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kraphdb_operations_total",
			Help: "Total number of graph CRUD operations",
		},
		[]string{"op"},
	)

	// Live entity counts, updated by the Engine after each mutation.
	NodesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kraphdb_nodes_total",
			Help: "Number of live nodes in the store",
		},
	)

	RelationshipsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kraphdb_relationships_total",
			Help: "Number of live relationships in the store",
		},
	)

	// HTTP surface metrics, recorded by the server middleware.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kraphdb_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kraphdb_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)
