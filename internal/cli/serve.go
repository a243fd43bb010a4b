package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eshaffer321/statement-reconciler/internal/api"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/logging"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

// shutdownTimeout bounds how long in-flight requests get after ctx ends
const shutdownTimeout = 30 * time.Second

// RunServe serves the run history API until ctx is cancelled.
func RunServe(ctx context.Context, cfg *config.Config, flags *ServeFlags) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "api")

	dbPath := cfg.Storage.DatabasePath
	if flags.DBPath != "" {
		dbPath = flags.DBPath
	}
	store, err := storage.NewStorageWithLogger(dbPath, logger.With("system", "storage"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	server := api.NewServer(serverConfig(cfg, flags), store, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("server shutdown error", slog.Any("error", err))
		return err
	}
	if err := <-errCh; err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// serverConfig merges the api config block with command line overrides
func serverConfig(cfg *config.Config, flags *ServeFlags) api.Config {
	apiCfg := api.DefaultConfig()
	if cfg.API.Port != 0 {
		apiCfg.Port = cfg.API.Port
	}
	if len(cfg.API.AllowedOrigins) > 0 {
		apiCfg.AllowedOrigins = cfg.API.AllowedOrigins
	}
	if flags.Port != 0 {
		apiCfg.Port = flags.Port
	}
	return apiCfg
}
