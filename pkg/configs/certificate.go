package configs

import "github.com/spf13/viper"

// CertificateConfig 证书 PDF 生成配置.
type CertificateConfig struct {
	Issuer        string `mapstructure:"issuer"`          // 证书上显示的签发方名称
	VerifyBaseURL string `mapstructure:"verify_base_url"` // 二维码指向的公开校验地址前缀
	ObjectPrefix  string `mapstructure:"object_prefix"`   // 证书 PDF 在对象存储中的前缀
}

func (c *CertificateConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("certificate.issuer", "DocShield Verification Service")
	v.SetDefault("certificate.verify_base_url", "http://localhost:8080/api/v1/public/certificates")
	v.SetDefault("certificate.object_prefix", "certificates/")
}
