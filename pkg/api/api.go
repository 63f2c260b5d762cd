// Package api 将各业务路由组装到 gin 引擎，是 HTTP 服务的路由入口.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/docshield/docshield/pkg/internal/router"
)

// RegisterGroup 注册全部业务路由到传入的 gin 引擎。
// 所有业务接口挂在 /api/v1 下，认证跳过清单（注册、登录、公开端点、健康检查）
// 由 auth 配置控制，中间件在 app 层统一装配.
func RegisterGroup(e *gin.Engine) *gin.Engine {
	router.RegisterSwaggerRoute(e)

	v1 := e.Group("/api/v1")
	{
		router.RegisterHealthCheckRoute(v1)
		router.RegisterAuthRoutes(v1)
		router.RegisterDocumentRoutes(v1)
		router.RegisterReviewRoutes(v1)
		router.RegisterShareRoutes(v1)
		router.RegisterCertificateRoutes(v1)
		router.RegisterNotificationRoutes(v1)
		router.RegisterAdminRoutes(v1)
		router.RegisterPublicRoutes(v1)
	}

	return e
}
