package handle

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/docshield/docshield/pkg/context"
)

const healthTimeout = 2 * time.Second

func healthResult(c *gin.Context, component string, err error) {
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": component, "status": "ok"})
}

// HealthDB 数据库健康检查.
func HealthDB(c *gin.Context) {
	dbc := ctxPkg.GetDBClient(c.Request.Context())
	if dbc == nil || dbc.DB == nil {
		healthResult(c, "db", errors.New("db client not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	sqlDB, err := dbc.DB.DB()
	if err != nil {
		healthResult(c, "db", err)
		return
	}

	healthResult(c, "db", sqlDB.PingContext(ctx))
}

// HealthS3 对象存储健康检查.
func HealthS3(c *gin.Context) {
	s3c := ctxPkg.GetS3Client(c.Request.Context())
	if s3c == nil || s3c.Client == nil {
		healthResult(c, "s3", errors.New("s3 client not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	_, err := s3c.ListBuckets(ctx)
	healthResult(c, "s3", err)
}

// HealthMQ 消息队列健康检查。publisher/subscriber 在 New 中一起初始化，判空即可.
func HealthMQ(c *gin.Context) {
	if ctxPkg.GetMQClient(c.Request.Context()) == nil {
		healthResult(c, "mq", errors.New("mq client not initialized"))
		return
	}

	healthResult(c, "mq", nil)
}
