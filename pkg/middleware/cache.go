package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/docshield/docshield/pkg/cache"
)

const (
	// DefaultMaxBodyBytes 超过该大小的响应不进缓存.
	DefaultMaxBodyBytes = 1 << 20

	defaultCacheTTL = 30 * time.Second
)

// CacheConfig 响应缓存中间件配置。用于公开验证端点这类
// 读多写少、内容短且无个性化的 GET 响应.
type CacheConfig struct {
	Cache *appcache.Cache // 必须: 注入的 Cache 实例
	TTL   time.Duration

	Skipper      func(*gin.Context) bool // 返回 true 跳过缓存
	BypassHeader string                  // 请求带该头(任意值)则绕过, 默认 X-Cache-Bypass
	MaxBodyBytes int                     // 0 表示不限制
}

// DefaultCacheConfig 返回默认配置.
func DefaultCacheConfig(c *appcache.Cache) CacheConfig {
	return CacheConfig{
		Cache:        c,
		TTL:          defaultCacheTTL,
		BypassHeader: "X-Cache-Bypass",
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// cachedResponse 序列化存储结构.
type cachedResponse struct {
	Status   int               `json:"s"`
	Header   map[string]string `json:"h,omitempty"`
	Body     []byte            `json:"b,omitempty"`
	ETag     string            `json:"e,omitempty"`
	StoredAt int64             `json:"t"` // unix nano, 用于 Age 头
}

// CacheMiddleware 缓存成功的 GET/HEAD 响应。带 ETag/If-None-Match 协商与
// X-Cache 命中标记；响应含 Cache-Control: no-store/private 时不缓存；
// 缓存读写失败只降级为未命中，不影响主流程.
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	if cfg.Cache == nil {
		panic("CacheMiddleware: Cache cannot be nil")
	}

	if cfg.TTL <= 0 {
		cfg.TTL = defaultCacheTTL
	}

	if cfg.BypassHeader == "" {
		cfg.BypassHeader = "X-Cache-Bypass"
	}

	return func(c *gin.Context) {
		if bypassCache(c, cfg) {
			c.Next()
			return
		}

		key := cacheKey(c)
		if serveCached(c, cfg, key) {
			return
		}

		rec := &responseRecorder{ResponseWriter: c.Writer, max: cfg.MaxBodyBytes}
		c.Writer = rec
		c.Next()
		storeResponse(c, cfg, key, rec)
	}
}

func bypassCache(c *gin.Context, cfg CacheConfig) bool {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		return true
	}

	if cfg.Skipper != nil && cfg.Skipper(c) {
		return true
	}

	return c.GetHeader(cfg.BypassHeader) != ""
}

// cacheKey 由方法、路由和排序后的 query 计算 xxhash 键.
func cacheKey(c *gin.Context) string {
	var b strings.Builder

	b.WriteString(c.Request.Method)
	b.WriteByte(':')

	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}

	b.WriteString(path)

	if q := c.Request.URL.Query(); len(q) > 0 {
		names := make([]string, 0, len(q))
		for k := range q {
			names = append(names, k)
		}

		sort.Strings(names)
		b.WriteByte('?')

		for i, k := range names {
			if i > 0 {
				b.WriteByte('&')
			}

			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(strings.Join(q[k], ","))
		}
	}

	return fmt.Sprintf("rc:%x", xxhash.Sum64String(b.String()))
}

// responseRecorder 捕获响应体，超出 max 即放弃缓存但继续透传.
type responseRecorder struct {
	gin.ResponseWriter

	buf      bytes.Buffer
	max      int
	overflow bool
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.max > 0 && w.buf.Len()+len(b) > w.max {
			w.overflow = true
		} else {
			w.buf.Write(b)
		}
	}

	return w.ResponseWriter.Write(b)
}

// serveCached 命中时写出缓存响应并中止链路；支持 304 协商.
func serveCached(c *gin.Context, cfg CacheConfig, key string) bool {
	entry, err := appcache.Get[cachedResponse](c.Request.Context(), cfg.Cache, key)
	if err != nil {
		return false
	}

	h := c.Writer.Header()
	for k, v := range entry.Header {
		h.Set(k, v)
	}

	if entry.ETag != "" {
		h.Set("ETag", entry.ETag)
	}

	h.Set("Age", fmt.Sprintf("%.0f", time.Since(time.Unix(0, entry.StoredAt)).Seconds()))
	h.Set("X-Cache", "HIT")

	if entry.ETag != "" && c.GetHeader("If-None-Match") == entry.ETag {
		c.Status(http.StatusNotModified)
		c.Abort()

		return true
	}

	c.Status(entry.Status)

	if c.Request.Method != http.MethodHead {
		_, _ = c.Writer.Write(entry.Body)
	}

	c.Abort()

	return true
}

// cacheable 依据状态码与响应自身的 Cache-Control 判断可否缓存.
func cacheable(c *gin.Context) bool {
	if c.Writer.Status() != http.StatusOK {
		return false
	}

	cc := strings.ToLower(c.Writer.Header().Get("Cache-Control"))

	return !strings.Contains(cc, "no-store") && !strings.Contains(cc, "private")
}

func storeResponse(c *gin.Context, cfg CacheConfig, key string, rec *responseRecorder) {
	if rec.overflow || !cacheable(c) {
		return
	}

	body := rec.buf.Bytes()

	hdr := make(map[string]string)
	for k, v := range c.Writer.Header() {
		if len(v) > 0 {
			hdr[k] = v[0]
		}
	}

	etag := c.Writer.Header().Get("ETag")
	if etag == "" {
		etag = fmt.Sprintf("%q", fmt.Sprintf("%x", xxhash.Sum64(body)))
		c.Writer.Header().Set("ETag", etag)
		hdr["ETag"] = etag
	}

	entry := cachedResponse{
		Status:   c.Writer.Status(),
		Header:   hdr,
		Body:     body,
		ETag:     etag,
		StoredAt: time.Now().UnixNano(),
	}

	go func(ctx context.Context) {
		_ = appcache.Set(ctx, cfg.Cache, key, entry, cfg.TTL)
	}(c.Request.Context())

	c.Writer.Header().Set("X-Cache", "MISS")
}
