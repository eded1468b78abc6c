// Package metric holds the Prometheus collectors exported at /metrics.
package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OpenseaRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seabot_opensea_requests_total",
			Help: "Total number of OpenSea API requests by endpoint and response status",
		},
		[]string{"endpoint", "status"},
	)

	OpenseaRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seabot_opensea_request_duration_seconds",
			Help:    "OpenSea API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seabot_interactions_total",
			Help: "Total number of Discord interactions handled by kind and outcome",
		},
		[]string{"kind", "name", "outcome"},
	)

	PagerSnapshots = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seabot_pager_snapshots",
			Help: "Number of sales pager snapshots currently held",
		},
	)
)

// StatusTransportError labels requests that never produced an HTTP status.
const StatusTransportError = "transport_error"

// ObserveOpenseaRequest records one OpenSea request. A status of 0 is recorded as a transport error.
func ObserveOpenseaRequest(endpoint string, status int, took time.Duration) {
	label := StatusTransportError
	if status != 0 {
		label = strconv.Itoa(status)
	}
	OpenseaRequestsTotal.WithLabelValues(endpoint, label).Inc()
	OpenseaRequestDuration.WithLabelValues(endpoint).Observe(took.Seconds())
}

// ObserveInteraction records one handled interaction.
func ObserveInteraction(kind, name, outcome string) {
	InteractionsTotal.WithLabelValues(kind, name, outcome).Inc()
}
