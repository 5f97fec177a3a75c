package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Backup   BackupConfig
	Display  DisplayConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggerConfig controls the zap logger. Mode is "production" (JSON) or "development" (console).
// When File is set, logs are additionally written to a rotating file.
type LoggerConfig struct {
	Mode  string
	Level string
	File  string
}

// AuthConfig holds the operator account and session token settings.
type AuthConfig struct {
	SessionKey    string
	SessionTTL    time.Duration
	AdminEmail    string
	AdminPassword string
}

// StorageConfig holds the product image storage settings.
type StorageConfig struct {
	UploadDir       string
	UploadURLPrefix string
}

// BackupConfig holds the scheduled backup settings. An empty Schedule disables the job.
type BackupConfig struct {
	Dir      string
	Schedule string
	Keep     int
}

// DisplayConfig holds presentation settings applied at the API boundary.
type DisplayConfig struct {
	CurrencySymbol string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	keep, err := strconv.Atoi(getEnv("BACKUP_KEEP", "14"))
	if err != nil || keep < 1 {
		return nil, fmt.Errorf("invalid BACKUP_KEEP: must be a positive integer")
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/parts_shop.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Logger: LoggerConfig{
			Mode:  getEnv("LOG_MODE", "development"),
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Auth: AuthConfig{
			SessionKey:    getEnv("SESSION_KEY", ""),
			SessionTTL:    sessionTTL,
			AdminEmail:    strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", ""))),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
		Storage: StorageConfig{
			UploadDir:       getEnv("UPLOAD_DIR", "./data/uploads"),
			UploadURLPrefix: getEnv("UPLOAD_URL_PREFIX", "/uploads"),
		},
		Backup: BackupConfig{
			Dir:      getEnv("BACKUP_DIR", "./data/backups"),
			Schedule: getEnv("BACKUP_SCHEDULE", ""),
			Keep:     keep,
		},
		Display: DisplayConfig{
			CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₺"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// IsDevelopment reports whether the logger runs in development mode.
// Permission failures are logged with their full payload only in this mode.
func (c *Config) IsDevelopment() bool {
	return c.Logger.Mode != "production"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma separated environment variable, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
