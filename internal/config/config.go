package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Workshop backend
	BackendURL     string
	BackendTimeout time.Duration

	// Session cookie
	SessionKey    string // HMAC key, empty generates a per-process key
	SessionEncKey string // AES key, 16/24/32 bytes or empty
	SessionMaxAge int    // seconds
	CookieSecure  bool
	CSRFKey       string // 32 bytes, empty generates a per-process key

	DB DBConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the same connection as a postgres:// URL, the form migrate expects.
func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// a missing .env is fine, the environment alone is enough
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		BackendURL:     strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8081"), "/"),
		BackendTimeout: getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),

		SessionKey:    os.Getenv("SESSION_KEY"),
		SessionEncKey: os.Getenv("SESSION_ENC_KEY"),
		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 24*60*60),
		CookieSecure:  getEnvBool("COOKIE_SECURE", false),
		CSRFKey:       os.Getenv("CSRF_KEY"),

		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "workshop_portal"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}

	if !strings.Contains(cfg.BackendURL, "://") {
		return nil, fmt.Errorf("BACKEND_URL must include a scheme, got %q", cfg.BackendURL)
	}
	switch len(cfg.SessionEncKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("SESSION_ENC_KEY must be 16, 24 or 32 bytes, got %d", len(cfg.SessionEncKey))
	}
	if cfg.CSRFKey != "" && len(cfg.CSRFKey) != 32 {
		return nil, fmt.Errorf("CSRF_KEY must be 32 bytes, got %d", len(cfg.CSRFKey))
	}
	if cfg.SessionMaxAge < 0 {
		return nil, fmt.Errorf("SESSION_MAX_AGE must not be negative, got %d", cfg.SessionMaxAge)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
