// Package metrics exposes Prometheus collectors for the tracking pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_events_ingested_total",
			Help: "Tracking events durably stored, by type",
		},
		[]string{"type"},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_events_rejected_total",
			Help: "Tracking events refused at ingestion, by reason",
		},
		[]string{"reason"},
	)

	SummaryQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitepulse_summary_query_duration_seconds",
			Help:    "Time to load and aggregate a tracking summary",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

// Rejection reasons.
const (
	ReasonMalformed   = "malformed"
	ReasonInvalid     = "invalid"
	ReasonRateLimited = "rate_limited"
	ReasonStoreError  = "store_error"
)
