package configs

import "github.com/spf13/viper"

// EventsConfig 控制文档生命周期事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled  bool                 `mapstructure:"enabled"` // 总开关
	Document DocumentEventsConfig `mapstructure:"document"`
}

// DocumentEventsConfig 针对文档领域的事件开关。
type DocumentEventsConfig struct {
	Uploaded    bool `mapstructure:"uploaded"`
	Analyzed    bool `mapstructure:"analyzed"`
	Reviewed    bool `mapstructure:"reviewed"`
	Assigned    bool `mapstructure:"assigned"`
	Certificate bool `mapstructure:"certificate"`
	Shared      bool `mapstructure:"shared"`
	Deleted     bool `mapstructure:"deleted"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	// 文档领域的事件：审核结果与证书签发驱动通知，默认开启
	v.SetDefault("events.document.uploaded", true)
	v.SetDefault("events.document.analyzed", true)
	v.SetDefault("events.document.reviewed", true)
	v.SetDefault("events.document.certificate", true)

	// 可选事件：默认关闭，按需开启
	v.SetDefault("events.document.assigned", false)
	v.SetDefault("events.document.shared", false)
	v.SetDefault("events.document.deleted", false)
}
