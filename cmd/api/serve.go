package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"taskify/internal/config"
	"taskify/internal/db"
	"taskify/internal/db/migrations"
	"taskify/internal/routes"
	"taskify/internal/services"
)

const shutdownTimeout = 5 * time.Second

var portOverride string

// NewServeCmd starts the HTTP API.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
	cmd.Flags().StringVar(&portOverride, "port", "", "listen port (overrides PORT)")
	return cmd
}

func runServe(ctx context.Context) error {
	cfg := config.Load()
	if portOverride != "" {
		cfg.Port = portOverride
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := migrations.RunMigrations(ctx, database.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	mailer := &services.SMTPSender{
		Host:    cfg.SMTPHost,
		Port:    cfg.SMTPPort,
		User:    cfg.SMTPUser,
		Pass:    cfg.SMTPPassword,
		From:    cfg.SMTPFrom,
		UseTLS:  cfg.SMTPUseTLS,
		Timeout: cfg.SMTPTimeout,
	}

	var avatars services.AvatarStore
	if cfg.S3.Enabled() {
		s3cfg, err := config.NewS3Config(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to configure S3: %w", err)
		}
		avatars = services.NewS3AvatarStore(s3cfg)
	} else {
		slog.Warn("S3 not configured, avatar uploads disabled")
	}

	svc := routes.NewServices(database.DB, cfg, mailer, avatars, services.NewMetrics())
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRoutes(cfg, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exiting")
	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*db.Database, error) {
	if err := db.CreateDatabaseIfNotExists(ctx, cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to ensure database exists: %w", err)
	}
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}
