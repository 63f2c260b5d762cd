package kv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

// 后端不原生支持过期的实现（内存、NATS KV、groupcache）共用这个信封：
// magic + 8 字节大端 unix 毫秒截止时间 + 原始值。Redis 用自身 TTL，不经过这里.
var ttlMagic = []byte("dsx1")

const ttlHeaderLen = 4 + 8

// encodeWithTTL 在 ttl>0 时包一层信封，否则原样返回。第二个返回值表示是否包装.
func encodeWithTTL(value []byte, ttl time.Duration) ([]byte, bool, error) {
	if ttl <= 0 {
		return value, false, nil
	}

	out := make([]byte, ttlHeaderLen+len(value))
	copy(out, ttlMagic)
	binary.BigEndian.PutUint64(out[4:], uint64(time.Now().Add(ttl).UnixMilli()))
	copy(out[ttlHeaderLen:], value)

	return out, true, nil
}

// decodeWithTTL 识别信封并判断是否过期，返回 (value, expired, wrapped, error).
func decodeWithTTL(b []byte, now time.Time) ([]byte, bool, bool, error) {
	if !bytes.HasPrefix(b, ttlMagic) {
		return b, false, false, nil
	}

	if len(b) < ttlHeaderLen {
		return nil, false, true, errors.New("truncated ttl envelope")
	}

	deadline := int64(binary.BigEndian.Uint64(b[4:ttlHeaderLen]))
	if now.UnixMilli() >= deadline {
		return nil, true, true, nil
	}

	return b[ttlHeaderLen:], false, true, nil
}
