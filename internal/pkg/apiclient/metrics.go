package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tripplanner_apiclient",
			Name:      "requests_total",
			Help:      "Logical API requests by endpoint and final outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tripplanner_apiclient",
			Name:      "retries_total",
			Help:      "Retry attempts scheduled after a recoverable failure.",
		},
		[]string{"endpoint"},
	)
)
