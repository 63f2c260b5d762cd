package kv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/docshield/docshield/pkg/configs"
)

// GroupcacheKV groupcache 前端。写入落在本地表，读经缓存组，
// 多实例部署时通过 HTTP 池分摊热点键。TTL 走 ttlValue 包装.
type GroupcacheKV struct {
	group *groupcache.Group
	peers *groupcache.HTTPPool

	mu    sync.RWMutex
	local map[string][]byte
}

// NewGroupcacheKV 创建 groupcache KV 实例.
func NewGroupcacheKV(ctx context.Context, config any) (KVStore, error) {
	cfg, ok := config.(*configs.GroupcacheKVConfig)
	if !ok {
		return nil, fmt.Errorf("invalid Groupcache config")
	}

	g := &GroupcacheKV{local: make(map[string][]byte)}

	g.group = groupcache.NewGroup(cfg.Name, cfg.CacheBytes, groupcache.GetterFunc(
		func(_ context.Context, key string, dest groupcache.Sink) error {
			g.mu.RLock()
			value, ok := g.local[key]
			g.mu.RUnlock()

			if !ok {
				return fmt.Errorf("key not found: %s", key)
			}

			return dest.SetBytes(value)
		}))

	if len(cfg.Peers) > 0 {
		g.peers = groupcache.NewHTTPPoolOpts(cfg.Self, &groupcache.HTTPPoolOptions{})
		g.peers.Set(cfg.Peers...)
	}

	return g, nil
}

func (g *GroupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	var raw []byte
	if err := g.group.Get(ctx, key, groupcache.AllocatingByteSliceSink(&raw)); err != nil {
		return nil, fmt.Errorf("groupcache get: %w", err)
	}

	plain, expired, _, err := decodeWithTTL(raw, time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = g.Delete(ctx, key)
		return nil, fmt.Errorf("key not found: %s", key)
	}

	out := make([]byte, len(plain))
	copy(out, plain)

	return out, nil
}

func (g *GroupcacheKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, _, err := encodeWithTTL(value, ttl)
	if err != nil {
		return err
	}

	buf := make([]byte, len(encoded))
	copy(buf, encoded)

	g.mu.Lock()
	g.local[key] = buf
	g.mu.Unlock()

	return nil
}

func (g *GroupcacheKV) Delete(ctx context.Context, key string) error {
	g.mu.Lock()
	delete(g.local, key)
	g.mu.Unlock()

	return nil
}

func (g *GroupcacheKV) Exists(ctx context.Context, key string) (bool, error) {
	g.mu.RLock()
	raw, ok := g.local[key]
	g.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if _, expired, _, err := decodeWithTTL(raw, time.Now()); err == nil && expired {
		_ = g.Delete(ctx, key)
		return false, nil
	}

	return true, nil
}

func (g *GroupcacheKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	keys := make([]string, 0, len(g.local))

	for key := range g.local {
		if pattern == "" || pattern == "*" || key == pattern {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// Close groupcache 没有显式关闭.
func (g *GroupcacheKV) Close() error { return nil }

func init() {
	RegisterKVFactory(KVTypeGroupcache, NewGroupcacheKV)
}
