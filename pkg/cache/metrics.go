package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Hits counts responses served from Redis.
	Hits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotel_cache_hits_total",
		Help: "Total number of hotel API responses served from cache",
	})

	// Misses counts lookups that found nothing usable.
	Misses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotel_cache_misses_total",
		Help: "Total number of hotel API cache misses",
	})

	// StoredBytes tracks the bytes written to the cache.
	StoredBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotel_cache_stored_bytes",
		Help: "Bytes of hotel API responses written to cache",
	})

	// NotModified counts 304 answers to conditional requests.
	NotModified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotel_cache_not_modified_total",
		Help: "Total number of 304 Not Modified responses",
	})

	// ConditionalRequests counts requests sent with validators.
	ConditionalRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotel_cache_conditional_requests_total",
		Help: "Total number of conditional requests sent",
	})

	// Errors counts Redis failures by operation (get, set, delete).
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_cache_errors_total",
		Help: "Total number of cache operation errors",
	}, []string{"operation"})
)
