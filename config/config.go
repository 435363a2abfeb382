package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port string

	// Document store
	MongoURI      string
	MongoDatabase string

	// Relational backend, optional
	PostgresDSN string

	// Stats mirror, optional
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Admin gate
	JWTSecret         string
	AdminPasswordHash string
	OperatorID        string
	OperatorName      string
	CORSOrigins       []string
	CookieSecure      bool

	// Image hosts
	GCSBucket          string
	GCSCredentialsFile string
	ImgBBAPIKey        string
	ImgBBUploadURL     string
	MaxImageBytes      int64

	// Push gateway
	OneSignalAppID  string
	OneSignalAPIKey string
	OneSignalAPIURL string

	// Timing
	PollInterval     time.Duration
	AlertDuration    time.Duration
	StoreTimeout     time.Duration
	HTTPTimeout      time.Duration
	StatsTTL         time.Duration
	StatsRefreshSpec string

	WalletCurrency string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file loaded, reading from environment:", err)
	}

	cfg := &Config{
		Port: getEnvOrDefault("PORT", "8080"),

		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getEnvOrDefault("MONGODB_DATABASE", "elsahm"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		OperatorID:        getEnvOrDefault("ADMIN_OPERATOR_ID", "admin-1"),
		OperatorName:      getEnvOrDefault("ADMIN_OPERATOR_NAME", "الإدارة"),
		CORSOrigins:       getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		CookieSecure:      getEnvBool("COOKIE_SECURE", false),

		GCSBucket:          os.Getenv("GCS_BUCKET"),
		GCSCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		ImgBBAPIKey:        os.Getenv("IMGBB_API_KEY"),
		ImgBBUploadURL:     getEnvOrDefault("IMGBB_UPLOAD_URL", "https://api.imgbb.com/1/upload"),
		MaxImageBytes:      int64(getEnvInt("MAX_IMAGE_BYTES", 5<<20)),

		OneSignalAppID:  os.Getenv("ONESIGNAL_APP_ID"),
		OneSignalAPIKey: os.Getenv("ONESIGNAL_API_KEY"),
		OneSignalAPIURL: getEnvOrDefault("ONESIGNAL_API_URL", "https://onesignal.com/api/v1"),

		PollInterval:     getEnvDuration("POLL_INTERVAL", 3*time.Second),
		AlertDuration:    getEnvDuration("ALERT_DURATION", 3*time.Second),
		StoreTimeout:     getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		HTTPTimeout:      getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		StatsTTL:         getEnvDuration("STATS_TTL", 5*time.Minute),
		StatsRefreshSpec: getEnvOrDefault("STATS_REFRESH_SPEC", "@every 5m"),

		WalletCurrency: getEnvOrDefault("WALLET_CURRENCY", "EGP"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !cfg.PushEnabled() {
		log.Println("Warning: ONESIGNAL_APP_ID or ONESIGNAL_API_KEY not set, push notifications disabled")
	}

	return cfg, nil
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI environment variable is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH environment variable is required")
	}
	if c.GCSBucket == "" && c.ImgBBAPIKey == "" {
		return fmt.Errorf("either GCS_BUCKET or IMGBB_API_KEY must be set")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.AlertDuration <= 0 {
		return fmt.Errorf("ALERT_DURATION must be positive")
	}
	if c.StatsTTL <= 0 {
		return fmt.Errorf("STATS_TTL must be positive")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive")
	}
	return nil
}

// PushEnabled reports whether the push channel has credentials.
func (c *Config) PushEnabled() bool {
	return c.OneSignalAppID != "" && c.OneSignalAPIKey != ""
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
