package configs

import (
	"time"

	"github.com/spf13/viper"
)

// CleanupConfig 定时清理任务配置，cron 表达式均为五段式.
type CleanupConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	RetentionDays  int    `mapstructure:"retention_days"   rule:"min=1"`
	PreviewTTLMin  int    `mapstructure:"preview_ttl_min"  rule:"min=1,max=60"`
	RetentionCron  string `mapstructure:"retention_cron"`
	ShareSweepCron string `mapstructure:"share_sweep_cron"`
	OrphanCron     string `mapstructure:"orphan_cron"`
}

// RetentionWindow 返回软删除文档的保留时长.
func (c *CleanupConfig) RetentionWindow() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// PreviewTTL 返回预览令牌有效期.
func (c *CleanupConfig) PreviewTTL() time.Duration {
	return time.Duration(c.PreviewTTLMin) * time.Minute
}

func (c *CleanupConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("cleanup.enabled", true)
	v.SetDefault("cleanup.retention_days", 30)
	v.SetDefault("cleanup.preview_ttl_min", 5)
	v.SetDefault("cleanup.retention_cron", "0 3 * * *")      // 每天 03:00 清理过保留期的软删除文档
	v.SetDefault("cleanup.share_sweep_cron", "*/30 * * * *") // 每 30 分钟清理过期分享
	v.SetDefault("cleanup.orphan_cron", "0 4 * * 0")         // 每周日 04:00 扫描孤儿对象
}
