package middleware

import (
	"strconv"
	"time"

	"github.com/edirooss/flowplan/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts, latency and in-flight requests per route template.
func Metrics(m *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched" // keep label cardinality bounded
		}
		m.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
