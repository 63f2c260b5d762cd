// Package mq 是 Watermill 之上的消息队列薄封装，按类型工厂装配
// Publisher/Subscriber。文档生命周期事件（上传、审核、撤销）经这里广播.
//
// 支持的类型：
//   - channel：进程内通道，单机部署与测试用
//   - nats：JetStream，多实例部署用
//
//	client, err := mq.New(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	msg := message.NewMessage(watermill.NewUUID(), []byte("hello world"))
//	err = client.Publish(ctx, "documents.uploaded", msg)
package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/docshield/docshield/pkg/configs"
	nlog "github.com/docshield/docshield/pkg/log"
)

// Factory 按配置创建一对 Publisher/Subscriber.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

// RegisterFactory 注册指定 MQType 的工厂，各实现在自己的 init 中调用.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的 MQ 类型列表.
func GetRegisteredMQTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	return types
}

// Client 持有装配好的 Publisher 与 Subscriber.
type Client struct {
	publisher  message.Publisher
	subscriber message.Subscriber
}

// Publish 把消息逐条发布到 topic，遇到第一个错误即停.
func (c *Client) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return errors.New("mq publisher not initialized")
	}

	for _, m := range msgs {
		if err := c.publisher.Publish(topic, m); err != nil {
			return fmt.Errorf("publish to %s: %w", topic, err)
		}
	}

	return nil
}

// Subscribe 订阅 topic，消息通道随 ctx 取消而关闭.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, errors.New("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// Close 关闭两端连接，错误合并返回.
func (c *Client) Close() error {
	var errs []error

	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}

	if c.subscriber != nil {
		errs = append(errs, c.subscriber.Close())
	}

	return errors.Join(errs...)
}

var (
	mqOnce sync.Once
	mqInst *Client
	mqErr  error
)

// New 按配置初始化消息队列客户端，进程内单例.
func New(ctx context.Context) (*Client, error) {
	mqOnce.Do(func() {
		cfg := configs.GetConfig().MQ

		factory, ok := factories[cfg.Type]
		if !ok {
			mqErr = fmt.Errorf("unsupported mq type: %s", cfg.Type)
			return
		}

		pub, sub, err := factory(ctx, &cfg, &zerologAdapter{l: nlog.Logger()})
		if err != nil {
			mqErr = fmt.Errorf("init mq (%s): %w", cfg.Type, err)
			return
		}

		mqInst = &Client{publisher: pub, subscriber: sub}

		nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("message queue ready")
	})

	return mqInst, mqErr
}
