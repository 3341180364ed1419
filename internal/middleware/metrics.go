package middleware

import (
	"strconv"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/infra"

	"github.com/gin-gonic/gin"
)

// Metrics records latency and count per route template. Unmatched paths share
// one label so scanners cannot blow up the series count.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		infra.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		infra.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
