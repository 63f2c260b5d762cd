package configs

import "github.com/spf13/viper"

const (
	DefaultSigningKeyDir = "./keys" // 密钥目录
	DefaultSigningBits   = 2048     // RSA 密钥长度
)

// SigningConfig 文档哈希签名配置。密钥以 PEM 存放，缺失时可由 keys 子命令生成.
type SigningConfig struct {
	KeyDir      string `mapstructure:"key_dir"`
	Bits        int    `mapstructure:"bits"         rule:"oneof=2048 3072 4096"`
	AutoGen     bool   `mapstructure:"auto_gen"`     // 启动时缺少密钥则自动生成
	PrivateFile string `mapstructure:"private_file"` // 私钥文件名
	PublicFile  string `mapstructure:"public_file"`  // 公钥文件名
}

func (c *SigningConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("signing.key_dir", DefaultSigningKeyDir)
	v.SetDefault("signing.bits", DefaultSigningBits)
	v.SetDefault("signing.auto_gen", true)
	v.SetDefault("signing.private_file", "private_key.pem")
	v.SetDefault("signing.public_file", "public_key.pem")
}
