// Package storage 聚合存储资源：数据库、对象存储、键值缓存与消息队列.
//
// Example:
//
//	ctx := context.Background()
//	mgr, err := storage.Init(ctx)
//	if err != nil {
//	    // 处理错误
//	}
//
//	dbClient := mgr.GetDBClient()
//	s3Client := mgr.GetS3Client()
package storage

import (
	"context"
	"sync"

	dbc "github.com/docshield/docshield/pkg/internal/storage/db"
	kvc "github.com/docshield/docshield/pkg/internal/storage/kv"
	mqc "github.com/docshield/docshield/pkg/internal/storage/mq"
	s3c "github.com/docshield/docshield/pkg/internal/storage/s3"
	nlog "github.com/docshield/docshield/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	S3 *s3c.Client
	DB *dbc.Client
	KV *kvc.Client
	MQ *mqc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置.重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		m := &Manager{}

		// DB
		dbi, e := dbc.New(ctx)
		if e != nil {
			err = e

			return
		}

		m.DB = dbi

		// S3
		s3i, e := s3c.New(ctx)
		if e != nil {
			err = e

			return
		}

		m.S3 = s3i

		// KV
		kvi, e := kvc.NewKVClient(ctx)
		if e != nil {
			err = e

			return
		}

		m.KV = kvi

		// MQ
		mqi, e := mqc.New(ctx)
		if e != nil {
			err = e

			return
		}

		m.MQ = mqi

		mgr = m

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// GetS3Client 获取 S3 客户端.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 依次关闭所有存储资源.
func (m *Manager) Close() {
	if m.MQ != nil {
		_ = m.MQ.Close()
	}

	if m.KV != nil {
		_ = m.KV.Close()
	}

	if m.S3 != nil {
		_ = m.S3.Close()
	}
}
