package middlewares

import (
	"net/http"
	"time"

	"civicecho-be/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitWindow is how long a submission counter lives.
const RateLimitWindow = 24 * time.Hour

// ComplaintRateLimiter allows limit submissions per caller per RateLimitWindow,
// counting in Redis under prefix:<user id>, or prefix:ip:<addr> for anonymous
// callers. A nil client disables the limit.
func ComplaintRateLimiter(client *redis.Client, prefix string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		log := logger.FromContext(ctx, nil)

		// Create individual key for each user
		subject := CurrentUserID(c)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		userKey := prefix + ":" + subject

		count, err := client.Incr(ctx, userKey).Result()
		if err != nil {
			log.Error("Rate limiter increment failed", logger.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong"})
			return
		}

		// Set TTL only for the first increment
		if count == 1 {
			if err := client.Expire(ctx, userKey, RateLimitWindow).Err(); err != nil {
				log.Error("Rate limiter expiry failed", logger.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong"})
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := client.TTL(ctx, userKey).Result()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			return
		}

		c.Next()
	}
}
