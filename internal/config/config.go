package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string // file path for sqlite
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Token configuration
	JWTSecret            string
	AccessTokenTTLHours  int
	RefreshTokenTTLHours int

	// File storage
	UploadDir string

	// SMTP relay (optional; mailer reports itself unconfigured when empty)
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// Bootstrap admin, seeded on first boot when the users table is empty
	AdminEmail    string
	AdminPassword string
}

// Load loads configuration from the environment, reading a .env file first
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "3000"),
		DBType:               getEnv("DB_TYPE", "sqlite"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "3306"),
		DBDatabase:           getEnv("DB_DATABASE", "teamdesk.db"),
		DBUser:               getEnv("DB_USER", ""),
		DBPassword:           getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:    getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		AccessTokenTTLHours:  getEnvAsInt("ACCESS_TOKEN_TTL_HOURS", 2),
		RefreshTokenTTLHours: getEnvAsInt("REFRESH_TOKEN_TTL_HOURS", 168),
		UploadDir:            getEnv("UPLOAD_DIR", "./uploads"),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:             getEnv("SMTP_USER", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:             getEnv("SMTP_FROM", ""),
		AdminEmail:           getEnv("ADMIN_EMAIL", "admin@localhost"),
		AdminPassword:        getEnv("ADMIN_PASSWORD", ""),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBType != "sqlite" && cfg.DBUser == "" {
		return nil, fmt.Errorf("DB_USER is required for %s", cfg.DBType)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
