// Package app 提供应用程序的初始化和配置功能.
package app

import (
	contextPkg "context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/docshield/docshield/pkg/api"
	"github.com/docshield/docshield/pkg/cache"
	"github.com/docshield/docshield/pkg/configs"
	"github.com/docshield/docshield/pkg/context"
	"github.com/docshield/docshield/pkg/internal/jobs"
	"github.com/docshield/docshield/pkg/internal/service"
	"github.com/docshield/docshield/pkg/internal/storage"
	"github.com/docshield/docshield/pkg/log"
	"github.com/docshield/docshield/pkg/metrics"
	"github.com/docshield/docshield/pkg/middleware"
	"github.com/docshield/docshield/pkg/rule"
	"github.com/docshield/docshield/pkg/scheduler"
	"github.com/docshield/docshield/pkg/tracing"
)

type App struct {
	Engine  *gin.Engine
	config  *configs.AppConfig
	manager *storage.Manager
	sched   *scheduler.Scheduler
}

func NewApp(configPath string) *App {
	ctx := contextPkg.Background()
	engine := gin.New()

	// 初始化配置
	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	// 初始化追踪
	config := configs.GetConfig()
	if err := tracing.InitTracer(config.Tracing); err != nil {
		fmt.Printf("Error initializing tracing: %v\n", err)
		os.Exit(1)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	ctx = context.WithStorageManager(ctx, manager)

	// 预热签名密钥，缺失且未开自动生成时尽早失败
	if _, err := service.GetSigner(); err != nil {
		fmt.Printf("Error initializing signing key: %v\n", err)
		os.Exit(1)
	}

	// 请求绑定校验统一走 rule 标签
	rule.Engine()

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	// 定时清理任务
	sched, err := scheduler.NewScheduler()
	if err != nil {
		fmt.Printf("Error initializing scheduler: %v\n", err)
		os.Exit(1)
	}

	if err := jobs.RegisterCronJobs(sched, manager); err != nil {
		fmt.Printf("Error registering cron jobs: %v\n", err)
		os.Exit(1)
	}

	sched.Start()

	// 事件通知消费者
	if config.Events.Enabled {
		if err := service.NewNotifier(ctx).Start(ctx); err != nil {
			l.Warn().Err(err).Msg("notifier start failed, notifications disabled")
		}
	}

	engine.Use(
		gin.Recovery(),
		middleware.CORSMiddleware(config.Server),
		middleware.GinLoggerMiddleware(),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		gzip.Gzip(gzip.DefaultCompression,
			gzip.WithExcludedPathsRegexs([]string{`.*/download$`, `.*/preview/.*`})),
		middleware.StorageMiddleware(manager),
		middleware.SchedulerMiddleware(sched),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.Breaker),
		middleware.AuthMiddleware(config.Auth),
	)

	// 公开证书校验走短 TTL 响应缓存
	if kvc := manager.GetKVClient(); kvc != nil {
		cacheCfg := middleware.DefaultCacheConfig(cache.NewCache(kvc))
		cacheCfg.Skipper = func(c *gin.Context) bool {
			return !strings.HasPrefix(c.Request.URL.Path, "/api/v1/public/certificates/")
		}
		engine.Use(middleware.CacheMiddleware(cacheCfg))
	}

	api.RegisterGroup(engine)

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	return &App{
		Engine:  engine,
		config:  config,
		manager: manager,
		sched:   sched,
	}
}

func (a *App) Run() error {
	defer a.shutdown()

	return a.Engine.Run(fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port))
}

func (a *App) shutdown() {
	if a.sched != nil {
		_ = a.sched.Shutdown()
	}

	if a.manager != nil {
		a.manager.Close()
	}
}
