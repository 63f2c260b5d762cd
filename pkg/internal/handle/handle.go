// Package handle 提供 HTTP 请求处理器，绑定请求、调用 service 并映射错误到状态码.
package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/log"
	"github.com/docshield/docshield/pkg/middleware"
	"github.com/docshield/docshield/pkg/rule"
)

// DefaultHandler 未实现路由的占位处理器.
func DefaultHandler(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"message": "Not Implemented"})
}

// actor 取认证中间件注入的当前用户.
func actor(c *gin.Context) *model.User {
	return middleware.GetActor(c)
}

// fail 将 service 层错误映射为 HTTP 响应。冲突错误附带既有资源 ID；
// 5xx 记日志但对外只给笼统消息，不泄露内部细节.
func fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)

	body := gin.H{"error": err.Error()}

	if ref := apperr.RefOf(err); ref != "" {
		body["existing_id"] = ref
	}

	if status >= http.StatusInternalServerError {
		log.Logger().Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		body["error"] = "internal error"
	}

	c.JSON(status, body)
}

// badRequest 请求绑定失败的统一响应，带字段级错误明细.
func badRequest(c *gin.Context, err error) {
	log.Logger().Warn().Err(err).Str("path", c.Request.URL.Path).Msg("invalid request")

	body := gin.H{"error": err.Error()}
	if fields := rule.Errors(err); len(fields) > 0 {
		body["fields"] = fields
	}

	c.JSON(http.StatusBadRequest, body)
}
