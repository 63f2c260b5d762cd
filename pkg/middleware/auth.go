package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/docshield/docshield/pkg/configs"
	ctxPkg "github.com/docshield/docshield/pkg/context"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/service"
	nlog "github.com/docshield/docshield/pkg/log"
)

// ActorKey gin context 中当前用户的键.
const ActorKey = "actor"

// AuthMiddleware 基于 Bearer JWT 做身份认证。
//   - 每个请求都回查用户：封禁立即生效，不等令牌过期
//   - 令牌内嵌的改密标记必须与用户当前标记完全一致，改密即全端下线
//   - 支持通过配置跳过某些路径（注册、登录、公开端点、/metrics 等）
//   - 开发模式可允许 ?token= 兜底（由 configs.auth.dev_allow_query 控制）.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()

			return
		}

		token := bearerToken(c, conf.DevAllowQuery)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})

			return
		}

		claims, err := service.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})

			return
		}

		dbc := ctxPkg.GetDBClient(c.Request.Context())
		if dbc == nil || dbc.GetDB() == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})

			return
		}

		var user model.User
		if err := dbc.GetDB().First(&user, "id = ?", claims.Subject).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				nlog.Logger().Error().Err(err).Msg("auth user lookup failed")
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})

			return
		}

		if user.Banned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account banned"})

			return
		}

		if claims.Pwd != user.PasswordMarker() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token invalidated by password change"})

			return
		}

		c.Set(ActorKey, &user)
		c.Next()
	}
}

func bearerToken(c *gin.Context, allowQuery bool) string {
	h := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}

	if allowQuery {
		return strings.TrimSpace(c.Query("token"))
	}

	return ""
}

// GetActor 从 gin.Context 取当前用户，认证中间件之后可用.
func GetActor(c *gin.Context) *model.User {
	if v, ok := c.Get(ActorKey); ok {
		if u, ok2 := v.(*model.User); ok2 {
			return u
		}
	}

	return nil
}

// RequireRole 要求当前用户属于给定角色之一，不满足返回 403.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := GetActor(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

			return
		}

		for _, r := range roles {
			if u.Role == r {
				c.Next()

				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role"})
	}
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
