package kv_test

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docshield/docshield/pkg/configs"
	"github.com/docshield/docshield/pkg/internal/storage/kv"
)

// 预览令牌的存取语义：写入带 TTL，过期后按不存在处理.
func TestMemoryKVTTLExpiry(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	if err := store.Set(ctx, "preview-tok-1", []byte("doc-42"), time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, "preview-tok-1")
	if err != nil {
		t.Fatalf("get before expiry: %v", err)
	}

	if string(got) != "doc-42" {
		t.Errorf("got %q, want doc-42", got)
	}

	// 非正 TTL 不包装，视为永不过期
	if err := store.Set(ctx, "preview-tok-2", []byte("doc-43"), 0); err != nil {
		t.Fatalf("set without ttl: %v", err)
	}

	if _, err := store.Get(ctx, "preview-tok-2"); err != nil {
		t.Fatalf("get without ttl: %v", err)
	}
}

func TestMemoryKVExistsAndDelete(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	if ok, _ := store.Exists(ctx, "missing"); ok {
		t.Error("missing key reported as existing")
	}

	if err := store.Set(ctx, "sh-tok", []byte("x"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	if ok, _ := store.Exists(ctx, "sh-tok"); !ok {
		t.Error("key should exist after set")
	}

	if err := store.Delete(ctx, "sh-tok"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.Get(ctx, "sh-tok"); err == nil {
		t.Error("expected miss after delete")
	}
}

func TestUnknownKVType(t *testing.T) {
	if _, err := kv.NewKVStore(context.Background(), kv.KVType("etcd"), nil); err == nil {
		t.Error("expected error for unregistered kv type")
	}
}

func BenchmarkMemoryKV(b *testing.B) {
	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		b.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	benchKV(b, "memory", store)
	benchKVParallel(b, "memory", store)
}

func BenchmarkGroupcacheKV(b *testing.B) {
	cfg := &configs.GroupcacheKVConfig{
		Name:       "bench-groupcache",
		CacheBytes: 32 << 20,
		Self:       "http://127.0.0.1:0",
	}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeGroupcache, cfg)
	if err != nil {
		b.Fatalf("create groupcache kv: %v", err)
	}
	defer store.Close()

	benchKV(b, "groupcache", store)
	benchKVParallel(b, "groupcache", store)
}

// 需要真实 Redis：ENABLE_REDIS_BENCH=1，REDIS_ADDR 默认 127.0.0.1:6379.
func BenchmarkRedisKV(b *testing.B) {
	if os.Getenv("ENABLE_REDIS_BENCH") == "" {
		b.Skip("set ENABLE_REDIS_BENCH=1 to enable")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeRedis, &configs.RedisKVConfig{Addr: addr})
	if err != nil {
		b.Skipf("redis not available: %v", err)
		return
	}
	defer store.Close()

	benchKV(b, "redis", store)
	benchKVParallel(b, "redis", store)
}

// 需要真实 NATS：ENABLE_NATS_BENCH=1，NATS_URL 默认 nats://127.0.0.1:4222.
func BenchmarkNATSKV(b *testing.B) {
	if os.Getenv("ENABLE_NATS_BENCH") == "" {
		b.Skip("set ENABLE_NATS_BENCH=1 to enable")
	}

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://127.0.0.1:4222"
	}

	bucket := os.Getenv("NATS_BUCKET")
	if bucket == "" {
		bucket = "bench-kv"
	}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeNATS, &configs.NATSKVConfig{URL: url, Bucket: bucket})
	if err != nil {
		b.Skipf("nats not available: %v", err)
		return
	}
	defer store.Close()

	benchKV(b, "nats", store)
	benchKVParallel(b, "nats", store)
}

func randBytes(tb testing.TB, n int) []byte {
	b := make([]byte, n)
	if _, err := crand.Read(b); err != nil {
		tb.Fatalf("rand: %v", err)
	}

	return b
}

func benchKV(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()

	for _, size := range []int{32, 1024, 64 * 1024} {
		payload := randBytes(b, size)

		for _, ttl := range []time.Duration{0, 5 * time.Second} {
			b.Run(fmt.Sprintf("%s/size=%d/ttl=%s", name, size, ttl), func(b *testing.B) {
				b.ReportAllocs()

				for i := 0; b.Loop(); i++ {
					// NATS KV 键不允许冒号，统一用连字符
					key := fmt.Sprintf("bench-%s-%d", name, i)
					if err := store.Set(ctx, key, payload, ttl); err != nil {
						b.Fatalf("set: %v", err)
					}

					if _, err := store.Get(ctx, key); err != nil {
						b.Fatalf("get: %v", err)
					}

					if err := store.Delete(ctx, key); err != nil {
						b.Fatalf("delete: %v", err)
					}
				}
			})
		}
	}
}

func benchKVParallel(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	payload := randBytes(b, 1024)

	var ctr uint64

	b.Run(name+"/parallel", func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				i := atomic.AddUint64(&ctr, 1)

				key := fmt.Sprintf("bench-%s-p-%d", name, i)
				if err := store.Set(ctx, key, payload, 0); err != nil {
					b.Fatalf("set: %v", err)
				}

				if _, err := store.Get(ctx, key); err != nil {
					b.Fatalf("get: %v", err)
				}

				if err := store.Delete(ctx, key); err != nil {
					b.Fatalf("delete: %v", err)
				}
			}
		})
	})
}
