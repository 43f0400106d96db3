// Package ratelimiter provides a Redis-backed fixed-window rate limiter
// for the authentication endpoints.
package ratelimiter

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Throttle limits requests to `limit` per `window`, counted per client IP.
// `name` separates the buckets of different endpoints.
//
// The counter lives in Redis so limits hold across replicas. When Redis is
// unreachable the request is allowed through: login availability outranks
// the limiter during an outage, and lockout still caps password guessing.
func Throttle(client *redis.Client, log zerolog.Logger, name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("throttle:%s:%s", name, c.ClientIP())
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			log.Error().Err(err).Str("bucket", name).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if count == 1 {
			if err := client.Expire(ctx, key, window).Err(); err != nil {
				log.Error().Err(err).Str("bucket", name).Msg("failed to set rate limit window")
			}
		}

		if count > int64(limit) {
			retryAfter := window
			if ttl, err := client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
				retryAfter = ttl
			}
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}

		c.Next()
	}
}
