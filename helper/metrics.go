package helper

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paytr_request_duration_seconds",
			Help:    "Latency of PayTR API calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	CollectAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collect_attempts_total",
			Help: "Recurring collection attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

// ObserveGatewayCall records one HTTP attempt; status 0 means no response.
func ObserveGatewayCall(operation string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	GatewayRequestDuration.WithLabelValues(operation, label).Observe(duration.Seconds())
}

func ObserveCollection(outcome string) {
	CollectAttempts.WithLabelValues(outcome).Inc()
}
