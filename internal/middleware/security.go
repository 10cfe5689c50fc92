package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/evofit/evofit-backend/pkg/clientip"
	"github.com/evofit/evofit-backend/pkg/utils"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerReferrerPolicy          = "Referrer-Policy"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerReferrerPolicy, "no-referrer")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

const (
	globalRateLimitRPS   = 5
	globalRateLimitBurst = 20

	authRateLimitEvery = 5 * time.Second
	authRateLimitBurst = 5

	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// IPRateLimiter keeps one token bucket per client IP. Idle buckets are
// dropped by Cleanup.
type IPRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry

	limit      rate.Limit
	burst      int
	trustProxy bool
	message    string
	now        func() time.Time
}

func NewIPRateLimiter(limit rate.Limit, burst int, trustProxy bool, message string) *IPRateLimiter {
	return &IPRateLimiter{
		entries:    make(map[string]*limiterEntry),
		limit:      limit,
		burst:      burst,
		trustProxy: trustProxy,
		message:    message,
		now:        time.Now,
	}
}

// GlobalRateLimit limits each IP across the whole API.
func GlobalRateLimit(trustProxy bool) *IPRateLimiter {
	return NewIPRateLimiter(rate.Limit(globalRateLimitRPS), globalRateLimitBurst, trustProxy,
		"Too many requests. Please slow down.")
}

// AuthRateLimit is the stricter limit for signup and login.
func AuthRateLimit(trustProxy bool) *IPRateLimiter {
	return NewIPRateLimiter(rate.Every(authRateLimitEvery), authRateLimitBurst, trustProxy,
		"Too many login attempts. Please try again later.")
}

func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastUse = l.now()
	return e.limiter.Allow()
}

// sweep removes buckets idle for longer than limiterTTL.
func (l *IPRateLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for ip, e := range l.entries {
		if now.Sub(e.lastUse) > limiterTTL {
			delete(l.entries, ip)
		}
	}
}

// Cleanup sweeps idle buckets until ctx is cancelled.
func (l *IPRateLimiter) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// Handler returns 429 once the caller's bucket is empty.
func (l *IPRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientip.FromRequest(r, l.trustProxy)) {
			utils.WriteMessage(w, http.StatusTooManyRequests, l.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}
