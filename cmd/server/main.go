package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wadjakorntonsri/shortly/pkg/app"
	"github.com/wadjakorntonsri/shortly/pkg/config"
	"github.com/wadjakorntonsri/shortly/pkg/logger"
)

func main() {
	cfg := config.Load()

	log, logCloser := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
