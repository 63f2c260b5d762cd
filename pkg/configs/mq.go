package configs

import (
	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeChannel MQType = "channel" // 进程内通道，单机部署与测试用
	MQTypeNATS    MQType = "nats"

	DefaultMQURL         = "localhost:4222"
	DefaultMaxReconnects = 5 // 默认最大重连次数.
	DefaultReconnectWait = 5 // 默认重连等待时间（秒）.
	DefaultMQClientID    = "docshield-app"

	// JetStream 流配置常量.

	DefaultStreamMaxMsgs  = 1000000            // 默认流最大消息数
	DefaultStreamMaxBytes = 1024 * 1024 * 1024 // 默认流最大字节数 (1GB)
	DefaultStreamMaxAge   = 24                 // 默认流最大年龄 (小时)

	// 消费者配置常量.

	DefaultConsumerAckWait    = 30 // 默认消费者确认等待时间 (秒)
	DefaultConsumerMaxDeliver = 3  // 默认消费者最大投递次数
)

// MQConfig 消息队列配置.
type MQConfig struct {
	Type   MQType         `mapstructure:"type"   rule:"oneof=channel nats"`
	Common MQCommonConfig `mapstructure:"common"`
	NATS   MQNATSConfig   `mapstructure:"nats"`
}

// MQCommonConfig 通用MQ配置.
type MQCommonConfig struct {
	URL           string `mapstructure:"url"            rule:"hostname_port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	ClientID      string `mapstructure:"client_id"`
	MaxReconnects int    `mapstructure:"max_reconnects" rule:"min=0,max=100"`
	ReconnectWait int    `mapstructure:"reconnect_wait" rule:"min=1,max=300"`
}

// MQNATSConfig NATS MQ 配置.
type MQNATSConfig struct {
	JetStreamEnabled       bool   `mapstructure:"jetstream_enabled"`
	StreamName             string `mapstructure:"stream_name"`
	SubjectPrefix          string `mapstructure:"subject_prefix"`
	JetStreamAutoProvision bool   `mapstructure:"jetstream_auto_provision"`
	JetStreamDurablePrefix string `mapstructure:"jetstream_durable_prefix"`
	StreamMaxMsgs          int64  `mapstructure:"stream_max_msgs"`
	StreamMaxBytes         int64  `mapstructure:"stream_max_bytes"`
	StreamMaxAge           int    `mapstructure:"stream_max_age"`
	ConsumerAckWait        int    `mapstructure:"consumer_ack_wait"`
	ConsumerMaxDeliver     int    `mapstructure:"consumer_max_deliver"`
}

// GetMQType 返回当前配置的消息队列类型.
func (c *MQConfig) GetMQType() MQType {
	return c.Type
}

// setDefaults 设置MQ配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeChannel)

	// Common 默认值
	v.SetDefault("mq.common.url", DefaultMQURL)
	v.SetDefault("mq.common.user", "")
	v.SetDefault("mq.common.password", "")
	v.SetDefault("mq.common.client_id", DefaultMQClientID)
	v.SetDefault("mq.common.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("mq.common.reconnect_wait", DefaultReconnectWait)

	// NATS 默认值
	v.SetDefault("mq.nats.jetstream_enabled", true)
	v.SetDefault("mq.nats.stream_name", "docshield-stream")
	v.SetDefault("mq.nats.subject_prefix", "docshield.")
	v.SetDefault("mq.nats.jetstream_auto_provision", true)
	v.SetDefault("mq.nats.jetstream_durable_prefix", "docshield-durable")
	v.SetDefault("mq.nats.stream_max_msgs", DefaultStreamMaxMsgs)
	v.SetDefault("mq.nats.stream_max_bytes", DefaultStreamMaxBytes)
	v.SetDefault("mq.nats.stream_max_age", DefaultStreamMaxAge)
	v.SetDefault("mq.nats.consumer_ack_wait", DefaultConsumerAckWait)
	v.SetDefault("mq.nats.consumer_max_deliver", DefaultConsumerMaxDeliver)
}
