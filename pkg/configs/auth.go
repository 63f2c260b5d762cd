package configs

import (
	"time"

	"github.com/spf13/viper"
)

// AuthConfig JWT 会话配置。令牌内嵌密码变更标记，改密后旧令牌立即失效。
type AuthConfig struct {
	Secret        string   `mapstructure:"secret"`          // HMAC 签名密钥
	Issuer        string   `mapstructure:"issuer"`          // 令牌签发方
	AccessTTLMin  int      `mapstructure:"access_ttl_min"`  // 访问令牌有效期（分钟）
	SkipPaths     []string `mapstructure:"skip_paths"`      // 跳过认证的路径前缀（如 /metrics、/api/v1/health）
	BcryptCost    int      `mapstructure:"bcrypt_cost"`     // 密码哈希成本
	DevAllowQuery bool     `mapstructure:"dev_allow_query"` // 开发模式允许用 ?token= 便于本地调试
}

// GetAccessTTL 返回访问令牌有效期.
func (c *AuthConfig) GetAccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMin) * time.Minute
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.secret", "change-me-in-production")
	v.SetDefault("auth.issuer", "docshield")
	v.SetDefault("auth.access_ttl_min", 24*60)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.dev_allow_query", false)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
		"/api/v1/auth/register",
		"/api/v1/auth/login",
		"/api/v1/public",
		"/swagger",
	})
}
