package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	// CircuitBreakerState is 0 closed, 1 open, 2 half-open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"service", "circuit_name"},
	)

	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of circuit breaker failures",
		},
		[]string{"service", "circuit_name"},
	)

	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Total number of orders by status",
		},
		[]string{"status"},
	)

	// PaymentRequestsTotal counts adapter calls; mode is live, demo or error.
	PaymentRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_requests_total",
			Help: "Total number of payment gateway requests",
		},
		[]string{"provider", "mode"},
	)

	PaymentTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_status_transitions_total",
			Help: "Total number of applied payment status transitions",
		},
		[]string{"from", "to"},
	)

	PaymentAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_amount_mnt",
			Help:    "Requested payment amounts in MNT",
			Buckets: []float64{10000, 50000, 100000, 250000, 500000, 1000000},
		},
	)
)

// PrometheusMiddleware records request count and latency per route.
func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		RequestsTotal.WithLabelValues(serviceName, c.Request.Method, endpoint, status).Inc()
		RequestDuration.WithLabelValues(serviceName, c.Request.Method, endpoint).Observe(duration)
	}
}
