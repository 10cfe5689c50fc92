package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("NUTRITION_TIMEOUT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("FRONTEND_URL", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.NutritionTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("TOKEN_TTL", "24h")
	t.Setenv("ALLOWED_ORIGINS", "https://evofit.app, https://www.evofit.app,")
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"https://evofit.app", "https://www.evofit.app"}, cfg.AllowedOrigins)
	assert.True(t, cfg.TrustProxy)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{StoreDriver: DriverMemory, JWTSecret: "k", TokenTTL: time.Hour}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.StoreDriver = "sqlite" }, true},
		{"empty secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"default secret in production", func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"non-positive ttl", func(c *Config) { c.TokenTTL = 0 }, true},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"named timezone", func(c *Config) { c.Timezone = "UTC" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	c := &Config{Timezone: "UTC"}
	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	c.Timezone = ""
	loc, err = c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}
