package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus collectors register once per process
var (
	// DatasetLoadDuration measures how long the initial dataset load took
	DatasetLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "olist_dashboard_dataset_load_duration_seconds",
			Help:    "Time taken to load the input datasets",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"source"}, // source: csv, snapshot
	)

	// DatasetRows reports the number of rows held in memory per dataset
	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "olist_dashboard_dataset_rows",
			Help: "Rows loaded per dataset",
		},
		[]string{"dataset"}, // dataset: orders, segments
	)

	// DatasetLoadFailures counts loads that ended in DataUnavailable
	DatasetLoadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "olist_dashboard_dataset_load_failures_total",
			Help: "Dataset loads that failed",
		},
	)

	// ViewBuilds counts dashboard view requests by cache outcome
	ViewBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "olist_dashboard_view_builds_total",
			Help: "Dashboard view requests by cache outcome",
		},
		[]string{"cache"}, // cache: hit, miss
	)

	// ViewBuildDuration measures a full filter/aggregate pass
	ViewBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "olist_dashboard_view_build_duration_seconds",
			Help:    "Time taken to recompute a dashboard view",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)

	// HTTPRequests counts served requests by route pattern and status
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "olist_dashboard_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures request latency by route pattern
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "olist_dashboard_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
