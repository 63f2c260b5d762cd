package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/docshield/docshield/pkg/configs"
)

const (
	limiterIdleTTL   = 10 * time.Minute
	limiterSweepTick = time.Minute
)

// limiterPool 按键维护限流器，闲置条目定期回收.
type limiterPool struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	p := &limiterPool{
		rps:     rate.Limit(rps),
		burst:   burst,
		entries: make(map[string]*limiterEntry),
	}

	go p.sweep()

	return p
}

func (p *limiterPool) allow(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(p.rps, p.burst)}
		p.entries[key] = e
	}

	e.lastSeen = time.Now()

	return e.limiter.Allow()
}

func (p *limiterPool) sweep() {
	ticker := time.NewTicker(limiterSweepTick)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-limiterIdleTTL)

		p.mu.Lock()
		for key, e := range p.entries {
			if e.lastSeen.Before(cutoff) {
				delete(p.entries, key)
			}
		}
		p.mu.Unlock()
	}
}

// RateLimitMiddleware 按配置限流。匿名的公开分享/验证端点是主要目标，
// key 维度支持 global、ip 和 header:Name.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keyMode := strings.ToLower(strings.TrimSpace(cfg.Key))

	if keyMode == "" || keyMode == "global" {
		limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(c *gin.Context) {
			if !limiter.Allow() {
				tooManyRequests(c)
				return
			}

			c.Next()
		}
	}

	pool := newLimiterPool(cfg.RPS, cfg.Burst)

	return func(c *gin.Context) {
		if !pool.allow(limitKey(c, keyMode)) {
			tooManyRequests(c)
			return
		}

		c.Next()
	}
}

func tooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
}

func limitKey(c *gin.Context, keyMode string) string {
	if h, ok := strings.CutPrefix(keyMode, "header:"); ok {
		if v := c.GetHeader(h); v != "" {
			return v
		}
	}

	if ip := clientIP(c); ip != "" {
		return ip
	}

	return "unknown"
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}

	return c.Request.RemoteAddr
}
