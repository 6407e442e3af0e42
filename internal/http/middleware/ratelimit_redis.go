package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"taskmaster/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter connects the shared Redis client used by the limiters.
// With an empty addr or a failed ping the client stays nil and the Redis
// limiters let every request through.
func InitRedisRateLimiter(addr, password string, db int) bool {
	redisClient = nil
	if addr == "" {
		return false
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiting falls back to memory", "addr", addr, "error", err)
		_ = client.Close()
		return false
	}
	redisClient = client
	return true
}

// RateLimit picks the Redis limiter when Redis is connected and the
// in-memory limiter otherwise.
func RateLimit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	if redisClient != nil {
		return RedisRateLimit(scope, maxRequests, window)
	}
	return SimpleRateLimit(maxRequests, window)
}

// RedisRateLimit is a fixed-window limiter per client IP using INCR/EXPIRE.
// key format: rl:<scope>:<window_seconds>:<ip>
func RedisRateLimit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rl:" + scope + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		limitByKey(c, key, "", maxRequests, window)
	}
}

// UserRateLimit limits per authenticated user instead of per IP. It must run
// after Auth.
func UserRateLimit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := c.Get("user_id")
		if !ok {
			c.Next()
			return
		}
		key := "rl:user:" + scope + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + toString(uid)
		limitByKey(c, key, "user:", maxRequests, window)
	}
}

func limitByKey(c *gin.Context, key, labelPrefix string, maxRequests int, window time.Duration) {
	if redisClient == nil {
		c.Next()
		return
	}
	ctx := c.Request.Context()

	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		// fail-open
		c.Header("X-RateLimit-Error", "redis-error")
		c.Next()
		return
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

	if val > int64(maxRequests) {
		RLBlocked.WithLabelValues(labelPrefix + c.FullPath()).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(window.Seconds()),
		})
		return
	}

	RLRequests.WithLabelValues(labelPrefix + c.FullPath()).Inc()
	c.Next()
}

func toString(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
