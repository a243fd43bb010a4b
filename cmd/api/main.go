package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/statement-reconciler/internal/cli"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/logging"
)

func main() {
	flags := cli.ParseServeFlags()
	cfg := config.LoadOrEnv_WithPath(flags.ConfigPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.RunServe(ctx, cfg, flags); err != nil {
		logger := logging.NewLogger(cfg.Observability.Logging)
		logger.Error("API server failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}
