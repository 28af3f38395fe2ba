package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vaishrk/pcos-care/internal/auth"
	"github.com/vaishrk/pcos-care/internal/common"
	"github.com/vaishrk/pcos-care/internal/config"
	"github.com/vaishrk/pcos-care/internal/inference"
	"github.com/vaishrk/pcos-care/internal/server"
	"github.com/vaishrk/pcos-care/internal/storage"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the prediction HTTP server",
		Long: `Load the trained model bundle and serve predictions, tracking,
auth, and content endpoints. The server refuses to start when the model
or schema artifact is missing or when the two do not belong together.`,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 0, "listen port (overrides config)")
	cmd.Flags().String("model", "", "path to the model artifact")
	cmd.Flags().String("schema", "", "path to the feature schema artifact")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("model.path", cmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("model.schema_path", cmd.Flags().Lookup("schema"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings := config.LoadSettings()
	if err := settings.ValidateForServe(); err != nil {
		return err
	}

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
		return fmt.Errorf("failed to seed content tables: %w", err)
	}

	predictor, err := inference.NewService(settings.ModelPath, settings.SchemaPath, store)
	if err != nil {
		return fmt.Errorf("failed to load model bundle: %w", err)
	}
	common.LogInfo("model bundle loaded", common.Fields{
		"bundle_id": predictor.BundleID(),
		"model":     settings.ModelPath,
		"schema":    settings.SchemaPath,
	})

	authSvc := auth.NewService(store, settings.JWTSecret, settings.TokenTTL)
	router := server.New(store, predictor, authSvc).Router(settings.AllowedOrigins)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", settings.Port)
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
