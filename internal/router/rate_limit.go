package router

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/domku/domku-api/internal/cache"
	"github.com/domku/domku-api/internal/config"
	"github.com/domku/domku-api/internal/http/response"
	"github.com/domku/domku-api/internal/logger"

	"github.com/gin-gonic/gin"
)

// rateLimiter 固定窗口限流，优先走 Redis，未启用时退化为进程内计数
type rateLimiter struct {
	name   string
	window time.Duration
	max    int

	mu      sync.Mutex
	local   map[string]int
	resetAt time.Time
}

func newRateLimiter(name string, cfg config.RateLimitConfig) *rateLimiter {
	window := time.Duration(cfg.WindowSeconds) * time.Second
	if window <= 0 {
		window = time.Minute
	}
	max := cfg.MaxRequests
	if max <= 0 {
		max = 100
	}
	return &rateLimiter{
		name:    name,
		window:  window,
		max:     max,
		local:   map[string]int{},
		resetAt: time.Now().Add(window),
	}
}

// Allow 判断该 IP 在当前窗口内是否还有配额
func (l *rateLimiter) Allow(c *gin.Context, ip string) bool {
	if cache.Enabled() {
		key := fmt.Sprintf("ratelimit:%s:%s", l.name, ip)
		ctx := c.Request.Context()
		client := cache.Client()
		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warnw("rate_limit_redis_failed", "name", l.name, "error", err)
			return true
		}
		if count == 1 {
			client.Expire(ctx, key, l.window)
		}
		return count <= int64(l.max)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if now.After(l.resetAt) {
		l.local = map[string]int{}
		l.resetAt = now.Add(l.window)
	}
	l.local[ip]++
	return l.local[ip] <= l.max
}

// RateLimit 按 IP 固定窗口限流
func RateLimit(name string, cfg config.RateLimitConfig) gin.HandlerFunc {
	limiter := newRateLimiter(name, cfg)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.Allow(c, ip) {
			logger.Warnw("rate_limit_exceeded", "name", name, "ip", ip)
			response.Error(c, http.StatusTooManyRequests, "Too many requests, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
