package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/statement-reconciler/internal/application/reconcile"
	"github.com/eshaffer321/statement-reconciler/internal/cli"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/logging"
)

func main() {
	flags := cli.ParseReconcileFlags()

	// Load configuration, flags win
	cfg := config.LoadOrEnv_WithPath(flags.ConfigPath)
	flags.Apply(cfg)

	logger := logging.NewLogger(cfg.Observability.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.PrintHeader(os.Stdout, cfg)

	result, err := cli.RunReconcile(ctx, cfg, cli.ReconcileIO{
		In:        os.Stdin,
		Out:       os.Stdout,
		NoColor:   flags.NoColor,
		NoHistory: flags.NoHistory,
	}, logger)
	if errors.Is(err, reconcile.ErrAborted) {
		fmt.Println("\nAborted. Nothing was written.")
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Reconciliation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cli.PrintSummary(os.Stdout, result)
}
