package mq

import (
	"context"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/docshield/docshield/pkg/configs"
)

const defaultChannelBuffer = 256

// init 注册进程内通道工厂.
func init() {
	RegisterFactory(configs.MQTypeChannel, channelFactory)
}

// channelFactory 创建进程内 Publisher & Subscriber。
// Publisher 与 Subscriber 是同一个 GoChannel 实例，消息不出进程.
func channelFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: defaultChannelBuffer,
		Persistent:          false,
	}, logger)

	return ch, ch, nil
}
