// Package metrics exposes the Prometheus registry used by the connector.
// All metrics are defined in their respective packages (client, cache, ratelimit,
// streams) to maintain modularity and avoid circular dependencies.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every package's promauto metrics land in.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the matching gatherer served by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registered metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Server serves Handler on /metrics.
type Server struct {
	srv *http.Server
}

// NewServer returns a metrics server listening on addr once started.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// ListenAndServe blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) ListenAndServe() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - healthie_rate_limit_remaining (Gauge): Requests remaining in the current window
//   - healthie_rate_limit_blocks_total (Counter): Requests delayed by a 429 block window
//   - healthie_rate_limit_throttles_total (Counter): Requests throttled near the limit
//
// Cache Metrics (pkg/cache):
//   - healthie_cache_hits_total{layer="redis"} (Counter): Page cache hits by layer
//   - healthie_cache_misses_total (Counter): Page cache misses
//   - healthie_cache_size_bytes{layer="redis"} (Gauge): Size of the last cached page
//   - healthie_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - healthie_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - healthie_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - healthie_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//   - healthie_graphql_errors_total (Counter): Responses with an errors array or undecodable body
//
// Retry Metrics (pkg/client):
//   - healthie_retries_total{error_class} (Counter): Retry attempts by error class
//   - healthie_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - healthie_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Stream Metrics (pkg/streams):
//   - healthie_stream_pages_total{stream} (Counter): Pages fetched per stream
//   - healthie_stream_records_total{stream} (Counter): Records yielded per stream
//   - healthie_stream_sync_failures_total{stream} (Counter): Syncs that ended with an error
//   - healthie_stream_sync_duration_seconds{stream} (Histogram): Wall time of a stream sync
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(healthie_cache_hits_total[5m])) /
//   (sum(rate(healthie_cache_hits_total[5m])) + sum(rate(healthie_cache_misses_total[5m])))
//
//   # Records per stream
//   sum by (stream) (healthie_stream_records_total)
//
//   # Request Error Rate
//   rate(healthie_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(healthie_request_duration_seconds_bucket[5m]))
