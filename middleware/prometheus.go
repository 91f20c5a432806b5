package middleware

import (
	"backoffice/helper"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_requests_total",
			Help: "Total number of requests processed by the collection API.",
		},
		[]string{"path", "status"},
	)

	ErrorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_requests_errors_total",
			Help: "Total number of error requests processed by the collection API.",
		},
		[]string{"path", "status"},
	)
)

// PrometheusInit registers HTTP and gateway metrics on the default registry.
func PrometheusInit() {
	prometheus.MustRegister(RequestCount)
	prometheus.MustRegister(ErrorCount)
	prometheus.MustRegister(helper.GatewayRequestDuration)
	prometheus.MustRegister(helper.CollectAttempts)
}

// TrackMetrics counts requests per route pattern.
func TrackMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()

		// route pattern, not the raw path, keeps label cardinality bounded
		path := c.Route().Path

		RequestCount.WithLabelValues(path, http.StatusText(status)).Inc()

		if status >= 400 {
			ErrorCount.WithLabelValues(path, http.StatusText(status)).Inc()
		}

		return err
	}
}
