package nps

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for gatewayRequests besides the gateway's own code.
const (
	outcomeTransport = "transport_error"
	outcomeHTTP      = "http_error"
	outcomeParse     = "parse_error"
)

var (
	gatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nps_gateway_requests_total",
			Help: "Outbound NPS gateway calls by endpoint and outcome (gateway code or local failure)",
		},
		[]string{"endpoint", "outcome"},
	)

	gatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nps_gateway_request_duration_seconds",
			Help:    "Latency of outbound NPS gateway calls",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)
)
