package configs

import (
	"time"

	"github.com/spf13/viper"
)

// ServerConfig HTTP 服务配置。PublicURL 用于拼分享链接和证书二维码里的
// 校验地址，部署在反代后面时必须显式配置.
type ServerConfig struct {
	Port         int    `mapstructure:"port"          rule:"min=1,max=65535"`
	Host         string `mapstructure:"host"          rule:"ip"`
	PublicURL    string `mapstructure:"public_url"`
	ReloadConfig bool   `mapstructure:"reload_config"`
	Debug        bool   `mapstructure:"debug"`
	Timeout      int    `mapstructure:"timeout"       rule:"min=1,max=300"`
}

// GetTimeoutDuration 返回请求超时时间.
func (s *ServerConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("server.reload_config", true)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.timeout", 30) // 秒
}
