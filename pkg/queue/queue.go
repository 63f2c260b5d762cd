// Package queue 管理消息队列，用于异步分发文档生命周期事件.
//
// 概览
//   - 采用发布/订阅模型，解耦"上传、分析、审核、证书签发、通知"等环节
//   - 统一的消息封装：Message[Payload] = Header + Payload
//   - 主题常量见 topics.go，负载结构体见 payloads.go
//   - 默认 JSON 编解码（bytedance/sonic），跨语言易解析
//
// 消息信封（Envelope）JSON 结构
//
//	{
//	  "header": {
//	    "topic": "ds.document.reviewed",
//	    "trace_id": "optional-trace-id",
//	    "producer": "docshield",
//	    "occurred_at": "2025-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { ... 取决于具体主题 ... }
//	}
//
// 发布/订阅示例
//
//	payload := queue.DocumentReviewedPayload{
//	  Document: queue.DocumentRef{ID: "...", OwnerID: "..."},
//	  Decision: "approved",
//	}
//
//	msg, _ := queue.NewWatermillMessage(queue.TopicDocumentReviewed, payload)
//	_ = client.Publish(ctx, queue.TopicDocumentReviewed, msg)
//
//	ch, _ := client.Subscribe(ctx, queue.TopicDocumentReviewed)
//	for m := range ch {
//	    env, _ := queue.ParseWatermillMessage[queue.DocumentReviewedPayload](m)
//	    // 使用 env.Header / env.Payload ...
//	    m.Ack()
//	}
//
// 注意事项
//  1. occurred_at 为 UTC，RFC3339 格式
//  2. version 便于后向兼容，消费者应忽略未知字段
//  3. Header.topic 与消息中间件的 Subject/Topic 可能重复，意在离线可追踪
package queue

import (
	"fmt"
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

// WatermillMessage 是 watermill 消息类型的别名，避免上层到处引用 message 包.
type WatermillMessage = message.Message

const (
	PayloadVersionV1 string = "v1"

	// DefaultProducer 默认生产者标识.
	DefaultProducer = "docshield"
)

// NewEventHeader 便捷创建事件头.
func NewEventHeader(topic string, opts ...func(*EventHeader)) EventHeader {
	hdr := EventHeader{
		Topic:      topic,
		Producer:   DefaultProducer,
		OccurredAt: time.Now().UTC(),
		Version:    PayloadVersionV1,
	}
	for _, opt := range opts {
		opt(&hdr)
	}

	return hdr
}

// WithTraceID 设置追踪 ID.
func WithTraceID(id string) func(*EventHeader) {
	return func(h *EventHeader) { h.TraceID = id }
}

// WithProducer 设置生产者标识.
func WithProducer(p string) func(*EventHeader) {
	return func(h *EventHeader) { h.Producer = p }
}

// Encode 将信封序列化为 JSON 字节.
func Encode[T any](env Message[T]) ([]byte, error) {
	b, err := sonic.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	return b, nil
}

// Decode 将 JSON 字节反序列化为信封.
func Decode[T any](data []byte) (Message[T], error) {
	var env Message[T]
	if err := sonic.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}

	return env, nil
}

// NewWatermillMessage 构造带信封的 watermill 消息.
func NewWatermillMessage[T any](topic string, payload T, opts ...func(*EventHeader)) (*message.Message, error) {
	header := NewEventHeader(topic, opts...)

	data, err := Encode(Message[T]{Header: header, Payload: payload})
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("topic", topic)

	if header.TraceID != "" {
		msg.Metadata.Set("trace_id", header.TraceID)
	}

	if header.Producer != "" {
		msg.Metadata.Set("producer", header.Producer)
	}

	msg.Metadata.Set("occurred_at", header.OccurredAt.Format(time.RFC3339Nano))

	if header.Version != "" {
		msg.Metadata.Set("version", header.Version)
	}

	return msg, nil
}

// ParseWatermillMessage 解出泛型负载.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}
