package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverMemory   = "memory"
)

type Config struct {
	// Telegram
	BotToken    string
	BotUsername string
	WorkerCount int

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Security
	JWTSecret      string
	InviteTTLHours int
	SuperAdminTgID int64

	// Application
	AppEnv   string
	AppPort  string
	LogLevel string

	// Rate Limiting
	RateLimitPerUser   int
	RateLimitWindowSec int

	// Extraction
	GeminiAPIKey             string
	GeminiModel              string
	ExtractionTimeoutSeconds int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		BotToken:    getEnv("BOT_TOKEN", ""),
		BotUsername: getEnv("BOT_USERNAME", ""),
		WorkerCount: getEnvInt("BOT_WORKERS", 8),

		DBDriver:   getEnv("DB_DRIVER", DBDriverPostgres),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "hitched"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "hitched_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:      getEnv("JWT_SECRET_KEY", ""),
		InviteTTLHours: getEnvInt("INVITE_TTL_HOURS", 72),

		AppEnv:   getEnv("APP_ENV", "development"),
		AppPort:  getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RateLimitPerUser:   getEnvInt("RATE_LIMIT_PER_USER", 20),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),

		GeminiAPIKey:             getEnv("GEMINI_API_KEY", ""),
		GeminiModel:              getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ExtractionTimeoutSeconds: getEnvInt("EXTRACTION_TIMEOUT_SECONDS", 30),
	}

	// Parse super admin telegram ID
	superAdminStr := getEnv("SUPER_ADMIN_TELEGRAM_ID", "")
	if superAdminStr != "" {
		id, err := strconv.ParseInt(superAdminStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SUPER_ADMIN_TELEGRAM_ID: %w", err)
		}
		cfg.SuperAdminTgID = id
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DBDriverPostgres:
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DBDriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q", DBDriverPostgres, DBDriverMemory)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters")
	}
	if c.InviteTTLHours <= 0 {
		return fmt.Errorf("INVITE_TTL_HOURS must be positive")
	}
	if c.RateLimitPerUser <= 0 || c.RateLimitWindowSec <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_USER and RATE_LIMIT_WINDOW_SECONDS must be positive")
	}
	return nil
}

// ValidateBot checks the settings needed to run the Telegram transport.
func (c *Config) ValidateBot() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("BOT_WORKERS must be positive")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}

	if c.DBDriver != DBDriverPostgres {
		return fmt.Errorf("DB_DRIVER must be 'postgres' in production")
	}
	if c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}
	if c.JWTSecret == "your_jwt_secret_minimum_32_chars_here_change_this" {
		return fmt.Errorf("JWT_SECRET_KEY must be changed from default in production")
	}
	if c.SuperAdminTgID == 0 {
		return fmt.Errorf("SUPER_ADMIN_TELEGRAM_ID must be set in production")
	}

	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) GetInviteTTL() time.Duration {
	return time.Duration(c.InviteTTLHours) * time.Hour
}

func (c *Config) GetRateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSec) * time.Second
}

func (c *Config) GetExtractionTimeout() time.Duration {
	return time.Duration(c.ExtractionTimeoutSeconds) * time.Second
}

func (c *Config) IsAdmin(telegramID int64) bool {
	return c.SuperAdminTgID != 0 && c.SuperAdminTgID == telegramID
}

func getEnv(key, defaultValue string) string {
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
