// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

// Package metrics registers the service's Prometheus collectors. All
// collectors are registered on the default registry via promauto and served
// by the /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	restoreRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casesync",
		Subsystem: "restore",
		Name:      "requests_total",
		Help:      "Restore requests by outcome.",
	}, []string{"outcome"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "casesync",
		Subsystem: "restore",
		Name:      "generation_seconds",
		Help:      "Restore payload generation duration by kind.",
		Buckets:   []float64{0.05, 0.25, 1, 5, 15, 60, 300},
	}, []string{"kind"})

	cacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casesync",
		Subsystem: "restore",
		Name:      "cache_operations_total",
		Help:      "Payload cache operations by operation and result.",
	}, []string{"op", "result"})
)

// Request outcomes.
const (
	OutcomePayload  = "payload"
	OutcomePending  = "pending"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Generation kinds.
const (
	KindInitial     = "initial"
	KindIncremental = "incremental"
)

// Cache operation results.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// RestoreRequest counts one finished restore request.
func RestoreRequest(outcome string) {
	restoreRequests.WithLabelValues(outcome).Inc()
}

// GenerationObserved records the duration of one payload generation.
func GenerationObserved(kind string, d time.Duration) {
	generationDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// CacheOperation counts one payload cache access.
func CacheOperation(op, result string) {
	cacheOperations.WithLabelValues(op, result).Inc()
}
