package configs

import "github.com/spf13/viper"

const (
	DefaultUploadMaxSizeMB = 10 // 默认上传大小上限（MB）
)

// UploadConfig 文件上传限制配置.
type UploadConfig struct {
	MaxSizeMB    int      `mapstructure:"max_size_mb"   rule:"min=1,max=512"`
	AllowedTypes []string `mapstructure:"allowed_types"` // 允许的 MIME 类型
}

// MaxSizeBytes 返回上传大小上限（字节）.
func (c *UploadConfig) MaxSizeBytes() int64 {
	return int64(c.MaxSizeMB) * 1024 * 1024
}

func (c *UploadConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upload.max_size_mb", DefaultUploadMaxSizeMB)
	v.SetDefault("upload.allowed_types", []string{
		"application/pdf",
		"image/jpeg",
		"image/png",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain",
	})
}
