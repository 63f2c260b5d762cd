package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultAnalyzerModel     = "llama-3.3-70b-versatile"
	DefaultAnalyzerBaseURL   = "https://api.groq.com/openai/v1"
	DefaultAnalyzerTimeout   = 30  // 调用超时（秒）
	DefaultAnalyzerMaxTokens = 500 // 回复 token 上限
)

// AnalyzerConfig AI 真实性分析器配置。走 OpenAI 兼容协议，base_url 可指向任意兼容服务.
type AnalyzerConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"  rule:"min=0,max=2"`
	MaxTokens   int     `mapstructure:"max_tokens"   rule:"min=1"`
	Timeout     int     `mapstructure:"timeout"      rule:"min=1,max=300"`
	MaxTextLen  int     `mapstructure:"max_text_len" rule:"min=100"` // 送入模型的文本截断长度
}

// GetTimeout 返回调用超时.
func (c *AnalyzerConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c *AnalyzerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("analyzer.enabled", true)
	v.SetDefault("analyzer.api_key", "")
	v.SetDefault("analyzer.base_url", DefaultAnalyzerBaseURL)
	v.SetDefault("analyzer.model", DefaultAnalyzerModel)
	v.SetDefault("analyzer.temperature", 0.3)
	v.SetDefault("analyzer.max_tokens", DefaultAnalyzerMaxTokens)
	v.SetDefault("analyzer.timeout", DefaultAnalyzerTimeout)
	v.SetDefault("analyzer.max_text_len", 4000)
}
