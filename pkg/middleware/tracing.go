package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/docshield/docshield/pkg/tracing"
)

// TracingMiddleware 为每个请求开 span。span 名用路由模板，
// 避免把 share id、证书号之类的路径参数散进 span 名.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Request.Method + " " + c.FullPath()

		ctx, span := tracing.StartSpan(c.Request.Context(), name,
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.target", c.Request.URL.Path),
				attribute.String("http.host", c.Request.Host),
				attribute.String("http.user_agent", c.Request.UserAgent()),
				attribute.String("http.client_ip", c.ClientIP()),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))

		if len(c.Errors) > 0 {
			span.SetStatus(codes.Error, c.Errors.String())
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}
