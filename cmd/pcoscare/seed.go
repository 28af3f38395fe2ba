package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vaishrk/pcos-care/internal/config"
	"github.com/vaishrk/pcos-care/internal/storage"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the diet and wellness content tables",
		Long: `Insert the curated diet recommendations and wellness tips. Tables
that already hold rows are left untouched, so the command is safe to
run repeatedly.`,
		RunE: runSeed,
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	settings := config.LoadSettings()

	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := store.Seed(ctx); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	slog.Info("content tables seeded", "database", settings.DatabasePath)
	return nil
}
