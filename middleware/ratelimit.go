package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// LoginRateLimit 登录接口限流中间件
// 滑动窗口：每 IP 在 window 内最多 maxAttempts 次尝试，超过返回 429
// 过期记录在访问时顺带清理，不另起后台协程
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		attempts = make(map[string][]time.Time)
	)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()
		cutoff := now.Add(-window)

		mu.Lock()
		kept := attempts[ip][:0]
		for _, t := range attempts[ip] {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) >= maxAttempts {
			attempts[ip] = kept
			mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": "登录尝试过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}
		attempts[ip] = append(kept, now)

		// 顺带清理其他 IP 的全过期记录，避免 map 无限增长
		for key, ts := range attempts {
			if key == ip {
				continue
			}
			if len(ts) > 0 && !ts[len(ts)-1].After(cutoff) {
				delete(attempts, key)
			}
		}
		mu.Unlock()

		c.Next()
	}
}
