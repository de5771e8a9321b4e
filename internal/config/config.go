package config

import (
	"errors"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env               string
	LogLevel          string
	DatabaseURL       string
	BindAddr          string
	Port              string
	Timezone          string
	JWTSecret         string
	OwnerPassphrase   string
	GeminiAPIKey      string
	FCMServiceAccount string
	CORSOrigins       string
	UploadDir         string
}

// Load reads the environment, picking up a local .env file when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:               getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DatabaseURL:       getEnv("DATABASE_URL", "lifesync.db"),
		BindAddr:          getEnv("BIND_ADDR", "127.0.0.1"),
		Port:              getEnv("PORT", "8080"),
		Timezone:          getEnv("TIMEZONE", "Local"),
		JWTSecret:         getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		OwnerPassphrase:   getEnv("OWNER_PASSPHRASE", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		FCMServiceAccount: getEnv("FCM_SERVICE_ACCOUNT", ""),
		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
	}
}

func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if _, err := c.Location(); err != nil {
		return errors.New("TIMEZONE is not a known IANA zone: " + c.Timezone)
	}
	if c.Env == "production" && c.OwnerPassphrase != "" && c.JWTSecret == "your-secret-key-change-in-production" {
		return errors.New("JWT_SECRET must be changed when OWNER_PASSPHRASE is set in production")
	}
	return nil
}

// Location resolves the zone every calendar-day computation runs in.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.BindAddr, c.Port)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
