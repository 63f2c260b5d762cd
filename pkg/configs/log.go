package configs

import (
	"github.com/spf13/viper"
)

// LogConfig 日志配置。控制台输出始终开启，文件输出走 lumberjack 轮转.
type LogConfig struct {
	EnableFile bool   `mapstructure:"enable_file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	Level      string `mapstructure:"level"       rule:"omitempty,oneof=trace debug info warn error"`
}

func (l *LogConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("log.enable_file", true)
	v.SetDefault("log.file_path", "logs/docshield.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.level", "info")
}
