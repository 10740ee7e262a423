package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per client key over fixed time windows.
// With a Redis client the counters are shared via INCR/EXPIRE; without
// one it falls back to process-local counters. Redis errors fail open so
// the API stays available.
type RateLimiter struct {
	rdb *redis.Client

	mu       sync.Mutex
	counters map[string]*windowCounter
}

type windowCounter struct {
	start time.Time
	count int64
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb, counters: make(map[string]*windowCounter)}
}

// ByIP limits requests per client IP.
func (rl *RateLimiter) ByIP(name string, max int, window time.Duration, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rl.handle(c, name+":ip:"+c.ClientIP(), max, window, message)
	}
}

// ByUser limits requests per authenticated user. Auth must run first.
func (rl *RateLimiter) ByUser(name string, max int, window time.Duration, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized, token missing or invalid",
			})
			return
		}
		rl.handle(c, name+":user:"+strconv.FormatInt(userID, 10), max, window, message)
	}
}

func (rl *RateLimiter) handle(c *gin.Context, key string, max int, window time.Duration, message string) {
	count, resetIn, err := rl.incr(c.Request.Context(), key, window)
	if err != nil {
		// fail-open, but make the degradation visible
		c.Header("X-RateLimit-Error", "unavailable")
		c.Next()
		return
	}

	remaining := int64(max) - count
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(max))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(resetIn).Unix(), 10))

	if count > int64(max) {
		RLBlocked.WithLabelValues(c.FullPath()).Inc()
		c.Header("Retry-After", strconv.FormatInt(int64(resetIn.Seconds())+1, 10))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"message": message,
		})
		return
	}

	RLRequests.WithLabelValues(c.FullPath()).Inc()
	c.Next()
}

// incr bumps the counter for key and returns the new count plus the time
// until the window rolls over.
func (rl *RateLimiter) incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if rl.rdb != nil {
		return rl.incrRedis(ctx, "rl:"+key, window)
	}
	return rl.incrLocal(key, window)
}

func (rl *RateLimiter) incrRedis(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	val, err := rl.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if val == 1 {
		rl.rdb.Expire(ctx, key, window)
		return val, window, nil
	}
	ttl, err := rl.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return val, ttl, nil
}

func (rl *RateLimiter) incrLocal(key string, window time.Duration) (int64, time.Duration, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	wc, ok := rl.counters[key]
	if !ok || now.Sub(wc.start) > window {
		wc = &windowCounter{start: now, count: 0}
		rl.counters[key] = wc
	}
	wc.count++
	return wc.count, window - now.Sub(wc.start), nil
}
