package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
	AutoMigrate     bool
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Env             string
	BodyLimit       string
	ShutdownTimeout time.Duration
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret             string
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	RememberAccessTTL  time.Duration
	RememberRefreshTTL time.Duration
	ResetTTL           time.Duration
}

// OTPConfig holds one-time password configuration
type OTPConfig struct {
	TTL time.Duration
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowOrigins []string
}

// StripeConfig holds payment provider configuration
type StripeConfig struct {
	SecretKey string
	ClientURL string
	Currency  string
}

// CloudinaryConfig holds image hosting configuration
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// UploadConfig holds limits for multipart image uploads
type UploadConfig struct {
	MaxFileSize    int64
	MaxFiles       int
	AllowedFormats []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	JWT         JWTConfig
	OTP         OTPConfig
	CORS        CORSConfig
	Stripe      StripeConfig
	Cloudinary  CloudinaryConfig
	Upload      UploadConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	origins := []string{"http://localhost:3000", "https://krist-e-commerce-shop.vercel.app"}
	if frontend := getEnv("FRONTEND_URL", ""); frontend != "" {
		origins = append([]string{frontend}, origins...)
	}

	config := &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "postgres"),
			Password:        getEnv("POSTGRES_PASSWORD", "password"),
			DBName:          getEnv("POSTGRES_DB", "krist_shop"),
			SSLMode:         getEnv("POSTGRES_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "4000"),
			Env:             getEnv("APP_ENV", "development"),
			BodyLimit:       getEnv("BODY_LIMIT", "25M"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "krist-shop"),
			AccessTTL:          getEnvAsDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTTL:         getEnvAsDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
			RememberAccessTTL:  getEnvAsDuration("JWT_REMEMBER_ACCESS_TTL", 7*24*time.Hour),
			RememberRefreshTTL: getEnvAsDuration("JWT_REMEMBER_REFRESH_TTL", 30*24*time.Hour),
			ResetTTL:           getEnvAsDuration("JWT_RESET_TTL", 10*time.Minute),
		},
		OTP: OTPConfig{
			TTL: getEnvAsDuration("OTP_TTL", 2*time.Minute),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnvAsSlice("CORS_ALLOW_ORIGINS", origins),
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("STRIPE_KEY", ""),
			ClientURL: strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:3000"), "/"),
			Currency:  getEnv("STRIPE_CURRENCY", "usd"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "kirst"),
		},
		Upload: UploadConfig{
			MaxFileSize:    int64(getEnvAsInt("UPLOAD_MAX_FILE_SIZE", 5*1024*1024)),
			MaxFiles:       getEnvAsInt("UPLOAD_MAX_FILES", 4),
			AllowedFormats: getEnvAsSlice("UPLOAD_ALLOWED_FORMATS", []string{"jpg", "jpeg", "png", "webp", "gif", "svg"}),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", strings.ReplaceAll(serviceName, "-", "_")),
		},
	}

	if config.IsProduction() && config.JWT.Secret == "krist-shop" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return config, nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_user", c.DB.User),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.Strings("cors_origins", c.CORS.AllowOrigins),
		zap.Bool("stripe_configured", c.Stripe.SecretKey != ""),
		zap.Bool("cloudinary_configured", c.Cloudinary.CloudName != ""),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as booleans
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get comma separated environment variables
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
