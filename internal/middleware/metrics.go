package middleware

import (
	"strconv" // Status label
	"time"    // Request latency

	"ecommerce_backend/internal/metrics" // Prometheus collectors

	"github.com/gin-gonic/gin" // Gin web framework
)

// Metrics records latency and count per matched route
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		c.Next()

		route := c.FullPath() // Route template keeps label cardinality bounded
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.RequestTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	}
}
