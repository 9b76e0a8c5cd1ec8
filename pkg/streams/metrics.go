package streams

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesFetched tracks pages fetched per stream
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthie_stream_pages_total",
			Help: "Total number of pages fetched by stream",
		},
		[]string{"stream"},
	)

	// RecordsEmitted tracks records yielded per stream
	RecordsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthie_stream_records_total",
			Help: "Total number of records emitted by stream",
		},
		[]string{"stream"},
	)

	// SyncFailures tracks stream syncs that ended with an error
	SyncFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthie_stream_sync_failures_total",
			Help: "Total number of stream syncs aborted by an error",
		},
		[]string{"stream"},
	)

	// SyncDuration tracks how long a full stream sync takes
	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "healthie_stream_sync_duration_seconds",
			Help:    "Duration of completed stream syncs in seconds",
			Buckets: []float64{0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"stream"},
	)
)
