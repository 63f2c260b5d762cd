package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/docshield/docshield/pkg/configs"
)

// NATSKV NATS JetStream KV 实现。bucket 不支持按键 TTL，
// 预览令牌这类带过期的值经 ttlValue 包装，读取时惰性清除.
type NATSKV struct {
	kv   nats.KeyValue
	conn *nats.Conn
}

// NewNATSKV 连接 NATS 并打开（或创建）配置的 bucket.
func NewNATSKV(ctx context.Context, config any) (KVStore, error) {
	cfg, ok := config.(*configs.NATSKVConfig)
	if !ok {
		return nil, fmt.Errorf("invalid NATS config")
	}

	var opts []nats.Option
	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	bucket, err := js.CreateKeyValue(&nats.KeyValueConfig{Bucket: cfg.Bucket})
	if err != nil {
		bucket, err = js.KeyValue(cfg.Bucket)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("open kv bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &NATSKV{kv: bucket, conn: conn}, nil
}

func (n *NATSKV) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := n.kv.Get(key)

	switch {
	case errors.Is(err, nats.ErrKeyNotFound):
		return nil, fmt.Errorf("key not found: %s", key)
	case err != nil:
		return nil, fmt.Errorf("nats kv get: %w", err)
	}

	val, expired, _, err := decodeWithTTL(entry.Value(), time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = n.kv.Delete(key)
		return nil, fmt.Errorf("key not found: %s", key)
	}

	return val, nil
}

func (n *NATSKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, _, err := encodeWithTTL(value, ttl)
	if err != nil {
		return err
	}

	if _, err := n.kv.Put(key, encoded); err != nil {
		return fmt.Errorf("nats kv put: %w", err)
	}

	return nil
}

func (n *NATSKV) Delete(ctx context.Context, key string) error {
	if err := n.kv.Delete(key); err != nil {
		return fmt.Errorf("nats kv delete: %w", err)
	}

	return nil
}

func (n *NATSKV) Exists(ctx context.Context, key string) (bool, error) {
	entry, err := n.kv.Get(key)

	switch {
	case errors.Is(err, nats.ErrKeyNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("nats kv get: %w", err)
	}

	_, expired, _, err := decodeWithTTL(entry.Value(), time.Now())
	if err != nil {
		return false, err
	}

	if expired {
		_ = n.kv.Delete(key)
		return false, nil
	}

	return true, nil
}

// Keys 列出存活的键。pattern 仅支持精确匹配，诊断子命令够用.
func (n *NATSKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := n.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("nats kv keys: %w", err)
	}

	alive := make([]string, 0, len(keys))

	for _, key := range keys {
		if pattern != "" && pattern != "*" && key != pattern {
			continue
		}

		if entry, err := n.kv.Get(key); err == nil {
			if _, expired, _, derr := decodeWithTTL(entry.Value(), time.Now()); derr == nil && expired {
				_ = n.kv.Delete(key)
				continue
			}
		}

		alive = append(alive, key)
	}

	return alive, nil
}

func (n *NATSKV) Close() error {
	n.conn.Close()
	return nil
}

func init() {
	RegisterKVFactory(KVTypeNATS, NewNATSKV)
}
