// Package db 负责关系型存储：按类型注册 dialector 工厂、
// 建连调池、自动迁移领域模型.
package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormPrometheus "gorm.io/plugin/prometheus"

	"github.com/docshield/docshield/pkg/configs"
	"github.com/docshield/docshield/pkg/internal/model"
	nlog "github.com/docshield/docshield/pkg/log"
)

// DialectorFactory 由各驱动文件在 init 中注册，cgo/纯 Go SQLite 靠 build tag 二选一.
type DialectorFactory func(dsn string) gorm.Dialector

var dialectorFactories = map[configs.DBType]DialectorFactory{}

// RegisterDialectorFactory 注册数据库 dialector 工厂函数.
func RegisterDialectorFactory(dbType configs.DBType, factory DialectorFactory) {
	dialectorFactories[dbType] = factory
}

// GetRegisteredDBTypes 返回已注册的数据库类型列表.
func GetRegisteredDBTypes() []configs.DBType {
	types := make([]configs.DBType, 0, len(dialectorFactories))
	for dbType := range dialectorFactories {
		types = append(types, dbType)
	}

	return types
}

var dbMu sync.Mutex

// Client 包装 GORM DB 客户端.
type Client struct {
	*gorm.DB
}

const slowQueryThreshold = 200 * time.Millisecond

func openGorm(cfg *configs.DBConfig) (*gorm.DB, error) {
	dsn := cfg.GetDSN()
	if dsn == "" {
		return nil, fmt.Errorf("no DSN for database type: %s", cfg.Type)
	}

	factory, ok := dialectorFactories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	gormLogger := logger.New(nlog.Logger(), logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})

	db, err := gorm.Open(factory(dsn), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return db, nil
}

// New 连接数据库、配置连接池并迁移模型。Metrics 开启时顺带挂 GORM 插件.
func New(ctx context.Context) (*Client, error) {
	dbMu.Lock()
	defer dbMu.Unlock()

	cfg := configs.GetConfig().DB

	db, err := openGorm(&cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	client := &Client{DB: db}

	if configs.GetConfig().Metrics.Enabled {
		if err := client.RegisterGORMMetrics(cfg.Database); err != nil {
			return nil, err
		}
	}

	nlog.Logger().Info().
		Str("type", cfg.GetDBType()).
		Str("database", cfg.Database).
		Msg("database connected")

	return client, nil
}

// Migrate 迁移全部领域模型.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Document{},
		&model.ReviewEntry{},
		&model.Share{},
		&model.Certificate{},
		&model.NotificationPreferences{},
		&model.Notification{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}

// GetDB 返回 GORM DB 实例.
func (c *Client) GetDB() *gorm.DB {
	return c.DB
}

// RegisterGORMMetrics 把连接池指标挂到默认注册表，不另起 HTTP 服务.
func (c *Client) RegisterGORMMetrics(dbName string) error {
	const refreshIntervalSeconds = 15

	err := c.Use(gormPrometheus.New(gormPrometheus.Config{
		DBName:          dbName,
		RefreshInterval: refreshIntervalSeconds,
		StartServer:     false,
	}))
	if err != nil {
		return fmt.Errorf("register gorm prometheus plugin: %w", err)
	}

	return nil
}
