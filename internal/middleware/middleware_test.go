package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/evofit/evofit-backend/internal/auth"
	"github.com/evofit/evofit-backend/internal/metrics"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc.def", "abc.def"},
		{"bearer abc", "abc"},
		{"Bearer    ", ""},
		{"Basic dXNlcjpwdw==", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BearerToken(tt.header), "header %q", tt.header)
	}
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	good, err := tokens.Issue("user-1")
	require.NoError(t, err)

	expiredSvc := auth.NewTokenService("secret", time.Hour).WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	})
	expired, err := expiredSvc.Issue("user-1")
	require.NoError(t, err)

	otherKey, err := auth.NewTokenService("other-secret", time.Hour).Issue("user-1")
	require.NoError(t, err)

	var seen string
	h := Authenticate(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"no header", "", http.StatusUnauthorized, "Access token required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Access token required"},
		{"garbage token", "Bearer nope", http.StatusForbidden, "Invalid or expired token"},
		{"expired token", "Bearer " + expired, http.StatusForbidden, "Invalid or expired token"},
		{"foreign signature", "Bearer " + otherKey, http.StatusForbidden, "Invalid or expired token"},
		{"valid token", "Bearer " + good, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/meals", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				assert.JSONEq(t, `{"message":"`+tt.message+`"}`, rec.Body.String())
				assert.Empty(t, seen)
			} else {
				assert.Equal(t, "user-1", seen)
			}
		})
	}
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(rate.Every(time.Hour), 2, false, "slow down")
	h := l.Handler(okHandler())

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("198.51.100.1:1000").Code)
	assert.Equal(t, http.StatusOK, do("198.51.100.1:1001").Code)
	rec := do("198.51.100.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"message":"slow down"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, do("198.51.100.2:1000").Code, "other IPs have their own bucket")
}

func TestIPRateLimiterSweep(t *testing.T) {
	now := time.Now()
	l := NewIPRateLimiter(rate.Limit(1), 1, false, "")
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(limiterTTL + time.Minute)
	l.Allow("b")
	l.sweep()

	assert.Len(t, l.entries, 1)
	assert.Contains(t, l.entries, "b")
}

func TestRedisRateLimiterFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	logger, hook := test.NewNullLogger()
	h := NewRedisRateLimiter(rdb, time.Minute, 1, false, logger).Handler(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/meals", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/meals", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	tokens := auth.NewTokenService("secret", time.Hour)
	token, err := tokens.Issue("user-9")
	require.NoError(t, err)

	h := RequestLogger(logger)(Authenticate(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, http.StatusCreated, entry.Data["status"])
	assert.Equal(t, "/api/posts", entry.Data["path"])
	assert.Equal(t, "user-9", entry.Data["user_id"])

	hook.Reset()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.NotContains(t, hook.LastEntry().Data, "user_id")
}

func TestInstrument(t *testing.T) {
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(Instrument(m))
	r.Get("/api/meals/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/meals/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/meals/def", nil))

	count, err := testutil.GatherAndCount(m.Registry(), "evofit_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "both requests share one route label")
}
