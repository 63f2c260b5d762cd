package configs

import "github.com/spf13/viper"

// RateLimitConfig 速率限制配置，主要保护 /public 下的匿名分享与证书端点.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"   rule:"min=0"`
	Burst   int     `mapstructure:"burst" rule:"min=0"`
	// Key 选择限流维度：global（全局）、ip（按客户端IP）、header:Header-Name（按请求头）
	Key string `mapstructure:"key"`
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("rate_limit.key", "ip")
}
