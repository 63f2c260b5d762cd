// Package context 把存储管理器和追踪信息挂到 context 上，
// handler 与 service 层统一从这里取客户端.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/docshield/docshield/pkg/internal/storage"
	dbc "github.com/docshield/docshield/pkg/internal/storage/db"
	kvc "github.com/docshield/docshield/pkg/internal/storage/kv"
	mqc "github.com/docshield/docshield/pkg/internal/storage/mq"
	s3c "github.com/docshield/docshield/pkg/internal/storage/s3"
)

type managerKey struct{}

// WithStorageManager 把 Manager 挂到 context 上.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, mgr)
}

// GetManager 取出 Manager，未挂载时返回 nil.
func GetManager(ctx context.Context) *storage.Manager {
	mgr, _ := ctx.Value(managerKey{}).(*storage.Manager)

	return mgr
}

// GetS3Client 取对象存储客户端，未挂载时返回 nil.
func GetS3Client(ctx context.Context) *s3c.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetS3Client()
	}

	return nil
}

// GetDBClient 取数据库客户端，未挂载时返回 nil.
func GetDBClient(ctx context.Context) *dbc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetDBClient()
	}

	return nil
}

// GetMQClient 取消息队列客户端，未挂载时返回 nil.
func GetMQClient(ctx context.Context) *mqc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetMQClient()
	}

	return nil
}

// GetKVClient 取键值存储客户端，未挂载时返回 nil.
func GetKVClient(ctx context.Context) *kvc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetKVClient()
	}

	return nil
}

// WithTraceContext 给 logger 附加当前 span 的 trace_id/span_id.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return logger
	}

	return logger.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
}
