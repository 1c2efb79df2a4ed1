package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrack/internal/metrics"
	"jobtrack/internal/ratelimit"
)

// RateLimitMiddleware 按调用方限流：已认证请求按邮箱计数，匿名请求按客户端 IP。
// 限流后端故障时放行并记录日志。
func RateLimitMiddleware(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if email, ok := UserEmailFromContext(c); ok && email != "" {
			key = "user:" + email
		}

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			LoggerFromContext(c).Warn("rate limiter unavailable", slog.Any("error", err))
		}
		if !allowed {
			path := c.FullPath()
			if path == "" {
				path = "unknown"
			}
			metrics.ObserveRateLimited(path)
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
