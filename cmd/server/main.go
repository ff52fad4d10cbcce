package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sammiepius/homelink-backend/internal/blob"
	"github.com/sammiepius/homelink-backend/internal/config"
	"github.com/sammiepius/homelink-backend/internal/db"
	"github.com/sammiepius/homelink-backend/internal/handlers"
	"github.com/sammiepius/homelink-backend/internal/logger"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

const (
	shutdownTimeout = 10 * time.Second
	memoryBlobURL   = "http://localhost/blobs"
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	lg, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer lg.Sync() //nolint:errcheck

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(ctx, cfg.Database, lg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	if *migrateOnlyFlag {
		if err := migrate(cfg, dbConn); err != nil {
			return err
		}
		lg.Info("migrations completed")
		return nil
	}
	if *seedOnlyFlag {
		if err := db.Seed(ctx, dbConn, cfg.Seed, lg); err != nil {
			return err
		}
		lg.Info("seeding completed")
		return nil
	}

	if cfg.App.Migrations {
		if err := migrate(cfg, dbConn); err != nil {
			return err
		}
		lg.Info("migrations completed")
	}
	// On startup the admin is only created when a password is configured.
	if cfg.Seed.AdminPassword != "" {
		if err := db.Seed(ctx, dbConn, cfg.Seed, lg); err != nil {
			return err
		}
	}

	blobs, err := newBlobStore(cfg.Blob, lg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := NewApp(handlers.NewRouterConfig(cfg, dbConn, blobs, lg), lg, reg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		lg.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	lg.Info("server stopped gracefully")
	return nil
}

// migrate applies the versioned SQL migrations when enabled, otherwise
// gorm AutoMigrate.
func migrate(cfg *config.Config, dbConn *gorm.DB) error {
	if cfg.App.SQLMigrations {
		if err := db.RunSQLMigrations(cfg.App.MigrationsDir, cfg.Database.URL()); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
		return nil
	}
	if err := db.Migrate(dbConn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// newBlobStore selects Cloudinary when configured. Config.Validate allows the
// in-memory fallback only in development.
func newBlobStore(cfg config.BlobConfig, lg *zap.Logger) (blob.Store, error) {
	if cfg.CloudinaryURL != "" {
		store, err := blob.NewCloudinaryStore(cfg.CloudinaryURL, cfg.Folder)
		if err != nil {
			return nil, fmt.Errorf("cloudinary: %w", err)
		}
		return store, nil
	}
	lg.Warn("CLOUDINARY_URL not set, storing images in memory")
	return blob.NewMemoryStore(memoryBlobURL), nil
}
