// Package observability holds the prometheus collectors shared across the
// data-access layer.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RetryAttempts counts store operation attempts by outcome
	// (success, retryable, terminal).
	RetryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "talkboard",
		Subsystem: "store",
		Name:      "retry_attempts_total",
		Help:      "Store operation attempts by operation and outcome.",
	}, []string{"operation", "outcome"})

	// CacheRequests counts cache lookups by result (hit, miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "talkboard",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Cache lookups by cache name and result.",
	}, []string{"cache", "result"})

	// CacheEvictions counts entries evicted under size pressure.
	CacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "talkboard",
		Subsystem: "cache",
		Name:      "evictions_total",
		Help:      "Cache entries evicted by LRU pressure.",
	}, []string{"cache"})
)
