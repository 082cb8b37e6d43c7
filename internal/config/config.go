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

// Config holds application configuration
type Config struct {
	// Server
	Port         string
	Env          string
	CORSOrigin   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Session tokens
	JWTSecret string
	TokenTTL  time.Duration

	// Redis (login throttling). Empty RedisAddr disables throttling.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LoginRate     float64
	LoginBurst    float64
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "studymate"),
		DBPassword: getEnv("DB_PASSWORD", "studymate"),
		DBName:     getEnv("DB_NAME", "studymate"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "studymate.db"),

		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
	}

	switch config.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: must be postgres, mysql, or sqlite", config.DBDriver)
	}

	var err error
	if config.TokenTTL, err = parseDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if config.ReadTimeout, err = parseDuration("HTTP_READ_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if config.WriteTimeout, err = parseDuration("HTTP_WRITE_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	if config.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if config.LoginRate, err = strconv.ParseFloat(getEnv("LOGIN_RATE", "0.2"), 64); err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE: %w", err)
	}
	if config.LoginBurst, err = strconv.ParseFloat(getEnv("LOGIN_BURST", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid LOGIN_BURST: %w", err)
	}

	if config.Env == "production" && config.JWTSecret == "fallback-secret-key-for-dev-only" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// parseDuration reads a duration variable, falling back to def when unset.
func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
