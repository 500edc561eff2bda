// Package metrics provides Prometheus metrics for the article pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess   = "success"
	OutcomeMalformed = "malformed"
	OutcomeTransport = "transport"
	OutcomeCanceled  = "canceled"
)

var (
	// FetchTotal counts completed fetches by source and outcome.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uptotimenews",
			Name:      "fetch_total",
			Help:      "Total number of article fetches",
		},
		[]string{"source", "outcome"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "uptotimenews",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of article fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// CoalescedTotal counts Start calls that joined a fetch already in flight.
	CoalescedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "uptotimenews",
			Name:      "fetch_coalesced_total",
			Help:      "Total number of fetch requests served by an in-flight fetch",
		},
	)

	ListSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "uptotimenews",
			Name:      "list_size",
			Help:      "Number of articles currently bound to the list",
		},
	)
)
