// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集应用和系统指标.
//
// Example:
//
//	import "github.com/docshield/docshield/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.RequestCounter.WithLabelValues("GET", "/api/v1/documents").Inc()
//	metrics.UploadCounter.WithLabelValues("ok").Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docshield/docshield/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 活跃连接数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	// UploadCounter 文档上传计数，label 标记结果（ok/duplicate/rejected）.
	UploadCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docshield_uploads_total",
			Help: "Total number of document uploads",
		},
		[]string{"result"},
	)

	// AnalysisCounter AI 分析计数，label 标记来源（fresh/cached/failed）.
	AnalysisCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docshield_analyses_total",
			Help: "Total number of authenticity analyses",
		},
		[]string{"result"},
	)

	// ReviewCounter 审核结论计数，label 标记 decision 与 path（manual/quick/auto）.
	ReviewCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docshield_reviews_total",
			Help: "Total number of review decisions",
		},
		[]string{"decision", "path"},
	)

	// CertificateCounter 证书签发计数.
	CertificateCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docshield_certificates_issued_total",
			Help: "Total number of certificates issued",
		},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
)

// InitMetrics 初始化Metrics.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	// 注册标准收集器
	if config.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// 注册 HTTP 与领域指标
	registry.MustRegister(
		RequestCounter, RequestDuration, ActiveConnections,
		UploadCounter, AnalysisCounter, ReviewCounter, CertificateCounter,
	)

	return nil
}

// StartMetricsServer 启动Metrics HTTP服务器.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	debugEngine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
