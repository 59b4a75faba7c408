package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string // sqlite (default), postgres, mysql
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string
	TokenDuration  time.Duration
	JWTSecret      string
	SESSenderEmail string // empty disables notification email
	SESRegion      string
	BackupPath     string
}

// Load reads configuration from environment variables with sensible defaults.
// A local .env file is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./routinestar.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		TokenDuration:  getDurationEnv("TOKEN_DURATION_HOURS", 12) * time.Hour,
		JWTSecret:      getEnv("JWT_SECRET", ""),
		SESSenderEmail: getEnv("SES_SENDER_EMAIL", ""),
		SESRegion:      getEnv("SES_REGION", "eu-west-1"),
		BackupPath:     getEnv("BACKUP_PATH", "./backups"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv reads an integer environment variable as a duration count
func getDurationEnv(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(defaultValue)
}
