package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"taskify/internal/config"
	"taskify/internal/db/migrations"
)

// NewMigrateCmd applies pending schema migrations and exits.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			database, err := openDatabase(ctx, config.Load())
			if err != nil {
				return err
			}
			defer database.Close()

			if err := migrations.RunMigrations(ctx, database.DB); err != nil {
				return err
			}
			slog.Info("migrations up to date")
			return nil
		},
	}
}
