package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/evofit/evofit-backend/pkg/clientip"
	"github.com/evofit/evofit-backend/pkg/utils"
)

const (
	// LoginAttemptWindow is the fixed window the Redis counter spans.
	LoginAttemptWindow = 15 * time.Minute
	// LoginAttemptMax is the number of auth requests one IP may make per window.
	LoginAttemptMax = 20
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:auth:"
)

// RedisRateLimiter counts requests per IP in Redis so the limit holds
// across instances. Redis failures let the request through.
type RedisRateLimiter struct {
	rdb        redis.Cmdable
	window     time.Duration
	max        int64
	trustProxy bool
	log        logrus.FieldLogger
}

func NewRedisRateLimiter(rdb redis.Cmdable, window time.Duration, max int64, trustProxy bool, log logrus.FieldLogger) *RedisRateLimiter {
	return &RedisRateLimiter{rdb: rdb, window: window, max: max, trustProxy: trustProxy, log: log}
}

// hit records one request and returns the count in the current window and
// the time until the window resets.
func (l *RedisRateLimiter) hit(ctx context.Context, key string) (int64, time.Duration, error) {
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	// A key without expiry is either new or lost its EXPIRE; either way
	// the window starts now.
	if ttl < 0 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = l.window
	}
	return count, ttl, nil
}

func (l *RedisRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.FromRequest(r, l.trustProxy)

		count, reset, err := l.hit(r.Context(), RateLimitKeyPrefix+ip)
		if err != nil {
			// Fail open
			l.log.WithError(err).Warn("rate limit counter unavailable")
			next.ServeHTTP(w, r)
			return
		}
		remaining := l.max - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(l.max, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))

		if count > l.max {
			w.Header().Set("Retry-After", strconv.Itoa(int(reset.Seconds())))
			utils.WriteMessage(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
