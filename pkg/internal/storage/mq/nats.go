// Package mq 提供 NATS 消息队列操作实现。
// 此文件包含 NATS 特定的工厂函数，用于创建配置了可选 JetStream 支持的 Publisher 和 Subscriber 实例。
package mq

import (
	"context"
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/docshield/docshield/pkg/configs"
)

const defaultDrainTimeout = 30 * time.Second

// init 注册 NATS 工厂.
func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

// buildNatsOptions 构建 NATS 连接选项.
func buildNatsOptions(cfg *configs.MQConfig) []nc.Option {
	opts := []nc.Option{
		nc.Name(cfg.Common.ClientID),
		nc.MaxReconnects(cfg.Common.MaxReconnects),
		nc.ReconnectWait(time.Duration(cfg.Common.ReconnectWait) * time.Second),
		nc.DrainTimeout(defaultDrainTimeout),
		nc.RetryOnFailedConnect(true),
	}

	if cfg.Common.User != "" {
		opts = append(opts, nc.UserInfo(cfg.Common.User, cfg.Common.Password))
	}

	return opts
}

// buildJetStreamConfig 构建 JetStream 配置.
func buildJetStreamConfig(cfg *configs.MQConfig) wmnats.JetStreamConfig {
	jsCfg := wmnats.JetStreamConfig{
		Disabled: !cfg.NATS.JetStreamEnabled,
	}

	if cfg.NATS.JetStreamEnabled {
		jsCfg.AutoProvision = cfg.NATS.JetStreamAutoProvision
		jsCfg.DurablePrefix = cfg.NATS.JetStreamDurablePrefix
	}

	return jsCfg
}

// natsFactory 创建 NATS Publisher & Subscriber.
func natsFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	opts := buildNatsOptions(cfg)
	jsCfg := buildJetStreamConfig(cfg)
	marshaler := &wmnats.JSONMarshaler{}

	pub, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:         cfg.Common.URL,
		NatsOptions: opts,
		JetStream:   jsCfg,
		Marshaler:   marshaler,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	sub, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:            cfg.Common.URL,
		NatsOptions:    opts,
		JetStream:      jsCfg,
		Unmarshaler:    marshaler,
		AckWaitTimeout: time.Duration(cfg.NATS.ConsumerAckWait) * time.Second,
	}, logger)
	if err != nil {
		_ = pub.Close()

		return nil, nil, err
	}

	return pub, sub, nil
}
