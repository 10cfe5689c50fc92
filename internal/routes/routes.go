package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/evofit/evofit-backend/internal/handlers"
	"github.com/evofit/evofit-backend/internal/metrics"
	"github.com/evofit/evofit-backend/internal/middleware"
)

type Options struct {
	Handler        *handlers.Handler
	Tokens         middleware.TokenVerifier
	Logger         logrus.FieldLogger
	Metrics        *metrics.Metrics // nil disables /metrics
	AllowedOrigins []string
	Production     bool
	TrustProxy     bool
	Redis          *redis.Client // nil falls back to in-process auth limits
}

// NewRouter builds the full route table. Background limiter cleanup stops
// when ctx is cancelled.
func NewRouter(ctx context.Context, o Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(o.Logger))
	r.Use(middleware.Instrument(o.Metrics))
	r.Use(middleware.CORS(o.AllowedOrigins))

	// Production: SecurityHeaders → GlobalRateLimit
	if o.Production {
		global := middleware.GlobalRateLimit(o.TrustProxy)
		go global.Cleanup(ctx)
		r.Use(middleware.SecurityHeaders)
		r.Use(global.Handler)
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if o.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", o.Metrics.Handler())
	}

	h := o.Handler
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if limit := authLimiter(ctx, o); limit != nil {
				r.Use(limit)
			}
			r.Post("/auth/signup", h.Signup)
			r.Post("/auth/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(o.Tokens))

			r.Get("/auth/me", h.Me)
			r.Delete("/auth/me", h.DeleteMe)

			r.Post("/nutrition/search", h.SearchNutrition)

			r.Get("/meals", h.ListMeals)
			r.Post("/meals", h.CreateMeal)
			r.Get("/meals/today", h.ListTodayMeals)
			r.Delete("/meals/{id}", h.DeleteMeal)

			r.Get("/workouts", h.ListWorkouts)
			r.Post("/workouts", h.CreateWorkout)
			r.Get("/workouts/today", h.ListTodayWorkouts)
			r.Delete("/workouts/{id}", h.DeleteWorkout)

			r.Get("/goals", h.GetGoal)
			r.Put("/goals", h.UpdateGoal)

			r.Get("/posts", h.ListPosts)
			r.Post("/posts", h.CreatePost)
			r.Post("/posts/{id}/like", h.LikePost)

			r.Get("/analytics/summary", h.Summary)
			r.Post("/upload", h.UploadImage)
		})
	})

	// WebSocket live feed; authenticates itself since browsers cannot send
	// the Authorization header on upgrade.
	r.Get("/ws/feed", h.FeedWebSocket)

	return r
}

// authLimiter picks the limiter for signup and login: the shared Redis
// counter when Redis is configured, else per-process buckets in production.
func authLimiter(ctx context.Context, o Options) func(http.Handler) http.Handler {
	if o.Redis != nil {
		return middleware.NewRedisRateLimiter(o.Redis, middleware.LoginAttemptWindow,
			middleware.LoginAttemptMax, o.TrustProxy, o.Logger).Handler
	}
	if o.Production {
		l := middleware.AuthRateLimit(o.TrustProxy)
		go l.Cleanup(ctx)
		return l.Handler
	}
	return nil
}
