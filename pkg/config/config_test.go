package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://shop.example.com")

	cfg, err := Load("krist-shop")
	require.NoError(t, err)

	assert.Equal(t, "krist_shop", cfg.Metrics.Prefix)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RememberAccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.RememberRefreshTTL)
	assert.Equal(t, 2*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, "kirst", cfg.Cloudinary.Folder)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, 4, cfg.Upload.MaxFiles)
	assert.Equal(t, "https://shop.example.com", cfg.CORS.AllowOrigins[0])
	assert.Contains(t, cfg.CORS.AllowOrigins, "http://localhost:3000")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_DB", "shop")
	t.Setenv("JWT_ACCESS_TTL", "30m")
	t.Setenv("OTP_TTL", "5m")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("CLIENT_URL", "https://shop.example.com/")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg, err := Load("krist-shop")
	require.NoError(t, err)

	assert.Equal(t, "host=db port=5432 user=postgres password=password dbname=shop sslmode=disable", cfg.DB.GetDSN())
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 5*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, logger.Silent, cfg.DB.LogLevel)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "https://shop.example.com", cfg.Stripe.ClientURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowOrigins)
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "krist-shop")

	_, err := Load("krist-shop")
	assert.Error(t, err)
}

func TestInvalidNumbersFallBackToDefaults(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "lots")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg, err := Load("krist-shop")
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.DB.MaxOpenConns)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}
