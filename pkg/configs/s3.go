package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// S3Config 对象存储配置（MinIO 或任何 S3 兼容实现）。上传的原始文件、
// 生成的证书 PDF 都落在同一个桶里，按前缀区分.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"          rule:"hostname_port"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"       rule:"required"`
	Region          string `mapstructure:"region"`
}

// GetEndpointURL 按 UseSSL 拼出完整端点 URL.
func (c *S3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

func (c *S3Config) setDefaults(v *viper.Viper) {
	v.SetDefault("s3.endpoint", "localhost:9000")
	v.SetDefault("s3.access_key_id", "minioadmin")
	v.SetDefault("s3.secret_access_key", "minioadmin")
	v.SetDefault("s3.use_ssl", false)
	v.SetDefault("s3.bucket_name", "docshield")
	v.SetDefault("s3.region", "us-east-1")
}
