// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const devJWTSecret = "dev-homelink-secret"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Auth     AuthConfig
	Blob     BlobConfig
	Upload   UploadConfig
	Seed     SeedConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds PostgreSQL connection settings.
// URLOverride, when set from DATABASE_URL, takes precedence over the parts.
type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	URLOverride string
	Debug       bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env           string
	Migrations    bool
	SQLMigrations bool
	MigrationsDir string
}

// AuthConfig holds token settings. Admin sessions get a shorter lifetime.
type AuthConfig struct {
	JWTSecret     string
	Issuer        string
	TokenTTL      time.Duration
	AdminTokenTTL time.Duration
}

// BlobConfig configures the image store. An empty CloudinaryURL selects the
// in-memory store.
type BlobConfig struct {
	CloudinaryURL string
	Folder        string
}

// UploadConfig bounds batch image uploads.
type UploadConfig struct {
	MaxFiles     int
	MaxFileBytes int64
}

// SeedConfig describes the admin account created by Seed.
type SeedConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	if d.URLOverride != "" {
		return d.URLOverride
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	if d.URLOverride != "" {
		return d.URLOverride
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// IsDev reports whether the app runs in development mode.
func (a AppConfig) IsDev() bool {
	return a.Env == "" || a.Env == "development" || a.Env == "dev"
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 60),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "homelink"),
			Password:    getEnv("DB_PASSWORD", "homelink"),
			DBName:      getEnv("DB_NAME", "homelink"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			URLOverride: os.Getenv("DATABASE_URL"),
			Debug:       getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Env:           getEnv("APP_ENV", "development"),
			Migrations:    getEnvBool("MIGRATIONS", true),
			SQLMigrations: getEnvBool("SQL_MIGRATIONS", false),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", devJWTSecret),
			Issuer:        getEnv("JWT_ISSUER", "homelink"),
			TokenTTL:      getEnvDuration("TOKEN_TTL", 30*24*time.Hour),
			AdminTokenTTL: getEnvDuration("ADMIN_TOKEN_TTL", 8*time.Hour),
		},
		Blob: BlobConfig{
			CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
			Folder:        getEnv("CLOUDINARY_FOLDER", "homelink_properties"),
		},
		Upload: UploadConfig{
			MaxFiles:     getEnvInt("UPLOAD_MAX_FILES", 4),
			MaxFileBytes: int64(getEnvInt("UPLOAD_MAX_FILE_BYTES", 5<<20)),
		},
		Seed: SeedConfig{
			AdminName:     getEnv("ADMIN_NAME", "Admin"),
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@homelink.com"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
	}
}

// Validate rejects configurations that are unsafe outside development.
func (c *Config) Validate() error {
	var errs []error
	if !c.App.IsDev() && c.Auth.JWTSecret == devJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set outside development"))
	}
	if !c.App.IsDev() && c.Blob.CloudinaryURL == "" {
		errs = append(errs, errors.New("CLOUDINARY_URL must be set outside development"))
	}
	if c.Auth.AdminTokenTTL <= 0 || c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.Auth.AdminTokenTTL > c.Auth.TokenTTL {
		errs = append(errs, errors.New("ADMIN_TOKEN_TTL must not exceed TOKEN_TTL"))
	}
	if c.Upload.MaxFiles < 1 {
		errs = append(errs, errors.New("UPLOAD_MAX_FILES must be at least 1"))
	}
	return errors.Join(errs...)
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDuration parses values like "720h" or "30m".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
