package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	defaultJWTSecret    = "your-secret-key-change-in-production"
	defaultNutritionURL = "https://trackapi.nutritionix.com/v2/natural/nutrients"
)

type Config struct {
	Environment string // ENV: production, development, etc.
	Port        string

	StoreDriver string // mongo, postgres or memory
	MongoURI    string
	PostgresURI string
	RedisURI    string // empty disables Redis

	JWTSecret string
	TokenTTL  time.Duration

	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	TrustProxy     bool     // read the caller IP from X-Forwarded-For

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	NutritionixAppID  string
	NutritionixAppKey string
	NutritionixURL    string
	NutritionTimeout  time.Duration

	Timezone  string // IANA zone that defines "today"; empty means server local time
	LogLevel  string
	LogFormat string // json or text
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:5173")}
	}

	logFormat := "text"
	if env == "production" {
		logFormat = "json"
	}

	return &Config{
		Environment:         env,
		Port:                getEnv("PORT", "8080"),
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/evofit")),
		PostgresURI:         getEnv("POSTGRES_URI", getEnv("DATABASE_URL", "postgres://localhost:5432/evofit?sslmode=disable")),
		RedisURI:            getEnv("REDIS_URI", ""),
		JWTSecret:           getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:            getDuration("TOKEN_TTL", 7*24*time.Hour),
		AllowedOrigins:      allowedOrigins,
		TrustProxy:          getBool("TRUST_PROXY", false),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		NutritionixAppID:    getEnv("NUTRITIONIX_APP_ID", ""),
		NutritionixAppKey:   getEnv("NUTRITIONIX_APP_KEY", ""),
		NutritionixURL:      getEnv("NUTRITIONIX_URL", defaultNutritionURL),
		NutritionTimeout:    getDuration("NUTRITION_TIMEOUT", 10*time.Second),
		Timezone:            getEnv("TZ_NAME", ""),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:           strings.ToLower(getEnv("LOG_FORMAT", logFormat)),
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; an empty value means the server's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ_NAME %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// CloudinaryEnabled reports whether all three Cloudinary credentials are set.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return b
	}
	return defaultValue
}
