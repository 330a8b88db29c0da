package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/osa911/waitlist/internal/config"
	"github.com/osa911/waitlist/internal/logging"
	"github.com/osa911/waitlist/internal/server"
	"github.com/osa911/waitlist/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Configure(logging.ServiceConfig(cfg.LogLevel, cfg.LogFile))
	logger := logging.GetLogger()
	defer logger.Close()

	logger.Info("Starting waitlist %s in %s mode", version.Info(), cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, logger); err != nil {
		logger.Error("Server exited: %v", err)
		os.Exit(1)
	}
}
