package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docshield/docshield/pkg/metrics"
)

// PrometheusMiddleware 记录请求计数、时延与在途请求数.
// endpoint 用注册的路由模板而不是原始路径，避免 share id、文档 id 撑爆标签基数.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		metrics.RequestCounter.WithLabelValues(c.Request.Method, endpoint).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
