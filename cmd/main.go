package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"satstream/internal/configuration"
	"satstream/internal/configuration/properties"
	"satstream/internal/logging"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	config, err := configuration.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Init(config.Application.LogLevel)
	slog.Info("starting satstream", "profile", config.Application.Profile)

	services, err := NewServices(properties.NewProvider(config))
	if err != nil {
		slog.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	slog.Info("satstream ready", "ingest", config.Transport.ListenAddr())
	if err := services.Run(ctx); err != nil {
		slog.Error("satstream stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("satstream stopped")
}
