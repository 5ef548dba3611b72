// The engine keeps a community's world showcase consistent: it admits
// submissions, mirrors them as forum threads, and periodically reconciles
// the registry against the live forum.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vrcshowcase/showcase-backend/internal/app"
	"github.com/vrcshowcase/showcase-backend/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.Log)
	logger.Info("starting reconciliation engine",
		slog.String("version", app.BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	application, err := app.New(ctx, *cfg, logger)
	if err != nil {
		logger.Error("startup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer application.Close()

	application.RunScanLoop(ctx)

	logger.Info("engine shut down")
}
