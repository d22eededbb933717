package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_service_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cart_service_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	cartOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_service_cart_operations_total",
			Help: "Total number of cart and checkout operations",
		},
		[]string{"operation", "status"},
	)

	unparsableGoodIDs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_service_unparsable_good_ids_total",
			Help: "Order lines whose cart id could not be parsed and fell back to 0",
		},
	)
)

// PrometheusMiddleware collects request count and latency metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Observe(duration)
	}
}

// RecordCartOperation records the outcome of one cart or checkout operation.
func RecordCartOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	cartOperations.WithLabelValues(operation, status).Inc()
}

// RecordUnparsableGoodID counts order lines that degraded to good id 0.
func RecordUnparsableGoodID() {
	unparsableGoodIDs.Inc()
}
