package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hdtodd/WeatherStation/internal/app"
	"github.com/hdtodd/WeatherStation/internal/config"
	"github.com/hdtodd/WeatherStation/internal/logging"
)

const appName = "weatherstation"

// Default version is "dev" if not set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, logOut := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = app.Run(ctx, cfg)
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		_ = logOut.Close()
		os.Exit(1)
	}

	slog.Info("shutting down")
	_ = logOut.Close()
}
