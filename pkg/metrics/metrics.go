// Package metrics provides the Prometheus registry used by the hotel client.
// All metrics are defined in their respective packages (client, cache,
// ratelimit, hotel) to maintain modularity and avoid circular dependencies.
//
// This package documents the available metrics and prints them for the CLI.
package metrics

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Prefix is shared by every metric the hotel client registers.
const Prefix = "hotel_"

// Registry is the default Prometheus registry used by the hotel client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back what Registry collected.
var Gatherer = prometheus.DefaultGatherer

// Dump writes the hotel metric families from Gatherer in the Prometheus text
// format.
func Dump(w io.Writer) error {
	return DumpFrom(Gatherer, w)
}

// DumpFrom writes the metric families of g whose name starts with Prefix.
func DumpFrom(g prometheus.Gatherer, w io.Writer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), Prefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - hotel_ratelimit_remaining (Gauge): Requests remaining in the current window, -1 if unknown
//   - hotel_ratelimit_blocks_total (Counter): Requests refused while the window is exhausted
//   - hotel_ratelimit_throttles_total (Counter): Requests delayed because few requests remain
//
// Cache Metrics (pkg/cache):
//   - hotel_cache_hits_total (Counter): Cache hits
//   - hotel_cache_misses_total (Counter): Cache misses
//   - hotel_cache_stored_bytes (Counter): Bytes written to the cache
//   - hotel_cache_not_modified_total (Counter): 304 Not Modified responses served from cache
//   - hotel_cache_conditional_requests_total (Counter): Requests sent with If-None-Match/If-Modified-Since
//   - hotel_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - hotel_requests_total{route, status} (Counter): Requests by route and HTTP status
//   - hotel_request_duration_seconds{route} (Histogram): Request duration by route
//   - hotel_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - hotel_retries_total{error_class} (Counter): Retry attempts by error class
//   - hotel_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - hotel_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Store Metrics (pkg/hotel):
//   - hotel_availability_checks_total{result} (Counter): Availability checks by result
//   - hotel_bookings_created_total (Counter): Bookings created
//   - hotel_logins_total{result} (Counter): Login attempts by result
//
// Routes are normalised: /room/3/from/2025-05-01/to/2025-05-04 is reported as
// /room/{id}/from/{date}/to/{date}.
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(hotel_cache_hits_total[5m])) /
//   (sum(rate(hotel_cache_hits_total[5m])) + sum(rate(hotel_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(hotel_errors_total[5m])
//
//   # P95 Availability Latency
//   histogram_quantile(0.95, rate(hotel_request_duration_seconds_bucket{route="/room/{id}/from/{date}/to/{date}"}[5m]))
