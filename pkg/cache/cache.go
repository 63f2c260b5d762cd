// Package cache 在 KV 存储之上提供类型安全的泛型缓存.
//
// 值经 sonic JSON 序列化后写入底层 KVStore（内存、Redis、NATS KV、
// groupcache 前端），TTL 由底层存储执行。服务内用于公开验证响应的
// 短 TTL 缓存和预览令牌这类小对象，未命中不视为错误.
//
//	c := cache.NewCache(kvStore)
//	err := cache.Set(ctx, c, "cert:CERT-1A2B", payload, 30*time.Second)
//	payload, err := cache.Get[VerifyPayload](ctx, c, "cert:CERT-1A2B")
//
// 线程安全取决于底层 KVStore 实现.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/docshield/docshield/pkg/internal/storage/kv"
)

// Cache 基于 KV 存储的缓存.
type Cache struct {
	store kv.KVStore
}

// NewCache 创建缓存实例.
func NewCache(store kv.KVStore) *Cache {
	return &Cache{store: store}
}

// Get 取出并反序列化缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.store.Get(ctx, key)
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 序列化并写入缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	return c.store.Set(ctx, key, data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// GetOrSet 读穿缓存：未命中时调用 getter 并回填。回填失败不报错，值照常返回.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	var zero T

	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	value, err := getter()
	if err != nil {
		return zero, err
	}

	_ = Set(ctx, c, key, value, ttl)

	return value, nil
}
