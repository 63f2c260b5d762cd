package configs

import "github.com/spf13/viper"

// CircuitBreakerConfig 整站熔断配置，后端（数据库、对象存储、AI 分析器）
// 持续劣化时快速失败.
type CircuitBreakerConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	FailureRate       float64 `mapstructure:"failure_rate"         rule:"min=0,max=1"` // 失败比例阈值
	MinRequests       uint32  `mapstructure:"min_requests"`                            // 进入统计的最小请求数
	IntervalSeconds   int     `mapstructure:"interval_seconds"`                        // 滑动窗口统计周期
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`                         // 打开状态持续时间（自动半开）
	MaxRequestsInHalf uint32  `mapstructure:"max_requests_in_half"`                    // 半开状态允许的并发请求数
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", true)
	v.SetDefault("circuit_breaker.failure_rate", 0.5)
	v.SetDefault("circuit_breaker.min_requests", 10)
	v.SetDefault("circuit_breaker.interval_seconds", 60)
	v.SetDefault("circuit_breaker.timeout_seconds", 30)
	v.SetDefault("circuit_breaker.max_requests_in_half", 5)
}
