// Package db connects to PostgreSQL, applies migrations and seeds the admin
// account.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sammiepius/homelink-backend/auth"
	"github.com/sammiepius/homelink-backend/internal/config"
	"github.com/sammiepius/homelink-backend/internal/models"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// Connect opens the PostgreSQL connection, retrying while the server starts.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	level := gormlogger.Silent
	if cfg.Debug {
		level = gormlogger.Info
	}
	gcfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	}

	var db *gorm.DB
	var err error
	for i := 1; i <= connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
		if err == nil {
			err = Ping(ctx, db)
		}
		if err == nil {
			break
		}
		log.Warn("database not ready, retrying", zap.Int("attempt", i), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	log.Info("database connected", zap.String("host", cfg.Host), zap.String("name", cfg.DBName))
	return db, nil
}

// Ping checks connectivity.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate applies gorm AutoMigrate for every model.
func Migrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// RunSQLMigrations executes the migrations in dir using golang-migrate.
func RunSQLMigrations(dir, databaseURL string) error {
	m, err := migrate.New("file://"+dir, databaseURL)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Seed creates the admin account, or promotes an existing account with the
// same email. Running it twice leaves one admin row.
func Seed(ctx context.Context, db *gorm.DB, cfg config.SeedConfig, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	// Logins lowercase the email, so the stored address must match.
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" {
		return errors.New("seed: admin email is empty")
	}

	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			if err := db.WithContext(ctx).Model(&existing).Update("role", models.RoleAdmin).Error; err != nil {
				return fmt.Errorf("seed: promote admin: %w", err)
			}
			log.Info("admin promoted", zap.Uint("user_id", existing.ID))
			return nil
		}
		log.Info("admin already exists", zap.Uint("user_id", existing.ID))
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("seed: lookup admin: %w", err)
	}

	if cfg.AdminPassword == "" {
		return errors.New("seed: ADMIN_PASSWORD is required to create the admin account")
	}
	if len(cfg.AdminPassword) > auth.MaxPasswordLength {
		return fmt.Errorf("seed: ADMIN_PASSWORD must be at most %d bytes", auth.MaxPasswordLength)
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	admin := models.User{Name: cfg.AdminName, Email: email, Password: hash, Role: models.RoleAdmin}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("seed: create admin: %w", err)
	}
	log.Info("admin created", zap.Uint("user_id", admin.ID))
	return nil
}
