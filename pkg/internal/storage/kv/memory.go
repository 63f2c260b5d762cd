package kv

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	value    []byte
	deadline time.Time // 零值表示永不过期
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.deadline.IsZero() && !now.Before(e.deadline)
}

// MemoryKV 进程内 KV，读取时惰性删除过期键，不做后台清扫。
// 单机部署和测试的默认后端.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(ctx context.Context, config any) (KVStore, error) {
	return &MemoryKV{data: make(map[string]memoryEntry)}, nil
}

// Get 获取键的值，过期键按不存在处理.
func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.data[key]
	m.mu.RUnlock()

	if ok && entry.expired(time.Now()) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()

		ok = false
	}

	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)

	return out, nil
}

// Set 设置键的值，ttl<=0 表示永不过期.
func (m *MemoryKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)

	if ttl > 0 {
		entry.deadline = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.data[key] = entry
	m.mu.Unlock()

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()

	return nil
}

// Exists 检查键是否存在且未过期.
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	entry, ok := m.data[key]
	m.mu.RUnlock()

	if ok && entry.expired(time.Now()) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()

		return false, nil
	}

	return ok, nil
}

// Keys 列出未过期的键，pattern 为空或 "*" 时返回全部，否则精确匹配.
func (m *MemoryKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	now := time.Now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))

	for k, entry := range m.data {
		if entry.expired(now) {
			continue
		}

		if pattern == "" || pattern == "*" || k == pattern {
			keys = append(keys, k)
		}
	}

	return keys, nil
}

// Close 内存实现无需操作.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}
