// Package configs 管理应用程序配置，包括数据库、对象存储、认证、分析器等配置信息.
// 支持多种配置格式（YAML、JSON、TOML、dotenv）、DOCSHIELD_ 前缀环境变量和热重载.
//
//	if err := configs.InitConfig("./"); err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := configs.GetConfig()
//	fmt.Println(cfg.Server.Port)
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppVersion 应用版本号.
const AppVersion = "1.0.0"

// AppConfig 全局应用程序配置.
type AppConfig struct {
	DB          DBConfig             `mapstructure:"db"`
	S3          S3Config             `mapstructure:"s3"`
	KV          KVConfig             `mapstructure:"kv"`
	MQ          MQConfig             `mapstructure:"mq"`
	Server      ServerConfig         `mapstructure:"server"`
	Log         LogConfig            `mapstructure:"log"`
	Auth        AuthConfig           `mapstructure:"auth"`
	Upload      UploadConfig         `mapstructure:"upload"`
	Analyzer    AnalyzerConfig       `mapstructure:"analyzer"`
	Signing     SigningConfig        `mapstructure:"signing"`
	Certificate CertificateConfig    `mapstructure:"certificate"`
	Cleanup     CleanupConfig        `mapstructure:"cleanup"`
	Events      EventsConfig         `mapstructure:"events"`
	Metrics     MetricsConfig        `mapstructure:"metrics"`
	Tracing     TracingConfig        `mapstructure:"tracing"`
	RateLimit   RateLimitConfig      `mapstructure:"rate_limit"`
	Breaker     CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

var (
	globalConfig AppConfig
	appViper     *viper.Viper
)

// defaulter 由每个配置节实现，集中注册默认值.
type defaulter interface {
	setDefaults(v *viper.Viper)
}

func setAllDefaults(v *viper.Viper) {
	sections := []defaulter{
		&ServerConfig{},
		&DBConfig{},
		&S3Config{},
		&KVConfig{},
		&MQConfig{},
		&LogConfig{},
		&AuthConfig{},
		&UploadConfig{},
		&AnalyzerConfig{},
		&SigningConfig{},
		&CertificateConfig{},
		&CleanupConfig{},
		&EventsConfig{},
		&MetricsConfig{},
		&TracingConfig{},
		&RateLimitConfig{},
		&CircuitBreakerConfig{},
	}

	for _, s := range sections {
		s.setDefaults(v)
	}
}

// resolveConfigFile 把 path 解析到具体配置文件。path 是文件时直接使用，
// 是目录时按扩展名优先级探测，都找不到就留给 viper 的 SetConfigName 机制.
func resolveConfigFile(v *viper.Viper, path string) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		v.SetConfigFile(path)
		return
	}

	v.SetConfigName("config")
	v.AddConfigPath(path)
	v.AddConfigPath(filepath.Join(path, "configs"))

	for _, ext := range []string{"yaml", "yml", "json", "toml", "env", "dotenv"} {
		cfg := filepath.Join(path, "config."+ext)
		if _, err := os.Stat(cfg); err == nil {
			v.SetConfigFile(cfg)
			return
		}
	}
}

// InitConfig 加载应用程序配置。没有配置文件时退回默认值加环境变量.
func InitConfig(path string) error {
	appViper = viper.New()

	setAllDefaults(appViper)
	resolveConfigFile(appViper, path)

	appViper.AutomaticEnv()
	appViper.SetEnvPrefix("DOCSHIELD")

	if err := appViper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if err := appViper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	watchReload(appViper, globalConfig.Server.ReloadConfig)

	return nil
}

// watchReload 启用配置热重载。log 包依赖本包，这里只能用 stderr.
func watchReload(v *viper.Viper, enabled bool) {
	if !enabled {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Fprintln(os.Stderr, "config file changed, reloading:", e.Name)

		if err := v.Unmarshal(&globalConfig); err != nil {
			fmt.Fprintln(os.Stderr, "reload config:", err)
		}
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

// GetViper 返回全局 viper 实例，CLI 诊断命令用.
func GetViper() *viper.Viper {
	return appViper
}
