package configs

import (
	"time"

	"github.com/spf13/viper"
)

// MetricsConfig Prometheus 指标配置，Endpoint 是独立 metrics 服务的监听地址.
type MetricsConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	ServiceName     string            `mapstructure:"service_name"`
	ServiceVersion  string            `mapstructure:"service_version"`
	ExporterType    string            `mapstructure:"exporter_type"    rule:"omitempty,oneof=prometheus"`
	Endpoint        string            `mapstructure:"endpoint"`
	CollectInterval time.Duration     `mapstructure:"collect_interval"`
	RuntimeMetrics  bool              `mapstructure:"runtime_metrics"`
	Labels          map[string]string `mapstructure:"labels"`
}

func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.service_name", "docshield")
	v.SetDefault("metrics.service_version", AppVersion)
	v.SetDefault("metrics.exporter_type", "prometheus")
	v.SetDefault("metrics.endpoint", ":9090")
	v.SetDefault("metrics.collect_interval", "15s")
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.labels", map[string]string{
		"service": "docshield",
		"version": AppVersion,
	})
}
