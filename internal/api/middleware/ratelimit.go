package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"

	"github.com/openmarket/marketplace-api/internal/adapter"
	"github.com/openmarket/marketplace-api/internal/logger"
)

// RateLimit returns a gin middleware limiting requests per client IP.
// Limiter state lives in Redis so the limit holds across API replicas.
// Limiter errors fail open.
func RateLimit(limiter adapter.RedisRateLimiter, requestsPerMinute int) gin.HandlerFunc {
	limit := redis_rate.PerMinute(requestsPerMinute)

	return func(c *gin.Context) {
		result, err := limiter.Allow(c.Request.Context(), "ratelimit:"+c.ClientIP(), limit)
		if err != nil {
			logger.WarnCtx(c.Request.Context(), "rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		if result.Allowed == 0 {
			c.Header("Retry-After", result.RetryAfter.String())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status": "failed",
				"data":   "too many requests",
			})
			return
		}

		c.Next()
	}
}
