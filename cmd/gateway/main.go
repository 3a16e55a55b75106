package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sanogenic/internal/config"
	"sanogenic/internal/gateway/app"
	"sanogenic/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(config.LogConfig{}).Error("failed to load config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", "err", err)
		os.Exit(1)
	}
	if err := a.Run(ctx); err != nil {
		log.Error("server error", "err", err)
		os.Exit(1)
	}
	log.Info("server exiting")
}
