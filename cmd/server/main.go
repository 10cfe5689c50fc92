package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/evofit/evofit-backend/internal/auth"
	"github.com/evofit/evofit-backend/internal/config"
	"github.com/evofit/evofit-backend/internal/database"
	"github.com/evofit/evofit-backend/internal/handlers"
	"github.com/evofit/evofit-backend/internal/metrics"
	"github.com/evofit/evofit-backend/internal/routes"
	"github.com/evofit/evofit-backend/internal/services"
	"github.com/evofit/evofit-backend/internal/store"
	"github.com/evofit/evofit-backend/internal/store/memstore"
	"github.com/evofit/evofit-backend/internal/store/mongostore"
	"github.com/evofit/evofit-backend/internal/store/pgstore"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}
	cfg := config.Load()
	log := newLogger(cfg)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.WithError(err).Warn("failed to close store")
		}
	}()

	var rdb *redis.Client
	if cfg.RedisURI != "" {
		rdb, err = database.ConnectRedis(cfg.RedisURI, log)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable; live feed stays in process and auth limits are per instance")
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	m := metrics.New()
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	hub := services.NewFeedHub(rdb, log, m)
	hub.Run(ctx)

	if cfg.NutritionixAppID == "" || cfg.NutritionixAppKey == "" {
		log.Warn("Nutritionix credentials not set; nutrition search will fail")
	}
	nutrition := services.NewNutritionService(cfg.NutritionixURL, cfg.NutritionixAppID, cfg.NutritionixAppKey,
		cfg.NutritionTimeout, log, m)

	params := services.Params{
		Store:     st,
		Hasher:    auth.NewPasswordHasher(auth.DefaultParams),
		Tokens:    tokens,
		Hub:       hub,
		Nutrition: nutrition,
		Location:  loc,
		Logger:    log,
		Metrics:   m,
	}
	// Initialize Cloudinary service
	if cfg.CloudinaryEnabled() {
		uploader, err := services.NewCloudinaryUploader(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.WithError(err).Warn("image uploads will not be available")
		} else {
			params.Uploader = uploader
			log.Info("Cloudinary uploads enabled")
		}
	} else {
		log.Warn("Cloudinary credentials not found; image uploads will not be available")
	}
	svc := services.New(params)

	router := routes.NewRouter(ctx, routes.Options{
		Handler:        handlers.New(svc, tokens, log),
		Tokens:         tokens,
		Logger:         log,
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins,
		Production:     cfg.IsProduction(),
		TrustProxy:     cfg.TrustProxy,
		Redis:          rdb,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":   cfg.Port,
			"env":    cfg.Environment,
			"driver": cfg.StoreDriver,
		}).Info("EvoFit backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore connects the configured backend and prepares its schema.
func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.ConnectPostgres(cfg.PostgresURI, log)
		if err != nil {
			return nil, fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		if err := database.InitPostgresTables(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("create PostgreSQL tables: %w", err)
		}
		return pgstore.New(db), nil

	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return memstore.New(), nil

	default:
		client, db, err := database.ConnectMongo(cfg.MongoURI, log)
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		st := mongostore.New(client, db)
		if err := st.EnsureIndexes(ctx); err != nil {
			log.WithError(err).Warn("failed to ensure MongoDB indexes")
		}
		return st, nil
	}
}
