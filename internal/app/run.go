package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hdtodd/WeatherStation/internal/config"
	db "github.com/hdtodd/WeatherStation/internal/db"
	httpapi "github.com/hdtodd/WeatherStation/internal/httpapi"
	weather "github.com/hdtodd/WeatherStation/internal/modules/weather"
	weatherviews "github.com/hdtodd/WeatherStation/internal/modules/weather/views"
)

const shutdownTimeout = 10 * time.Second

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"logFile", cfg.LogFile,
		"storePath", cfg.StorePath(),
		"storeTable", cfg.StoreTable,
		"historyWindow", cfg.HistoryWindow.String(),
		"pageVariant", cfg.PageVariant,
		"siteName", cfg.SiteName,
	)

	if err := weatherviews.LoadTemplates(); err != nil {
		return err
	}

	opener := db.NewFileOpener(cfg.StorePath(), slog.Default())
	checkStore(ctx, cfg, opener)

	mux := httpapi.NewMux(cfg, opener)
	weather.RegisterFeature(mux, cfg, opener, slog.Default())

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// checkStore logs whether the store is readable at startup. A missing store is
// not fatal: the collector may create it later, and requests report 503 until then.
func checkStore(ctx context.Context, cfg config.Config, opener db.Opener) {
	conn, err := opener.Open(ctx)
	if err != nil {
		slog.Warn("store not available at startup", "path", cfg.StorePath(), "error", err)
		return
	}
	defer func() { _ = db.Close(conn) }()

	if err := db.VerifySchema(ctx, conn, cfg.StoreTable); err != nil {
		slog.Warn("store schema check failed", "table", cfg.StoreTable, "error", err)
		return
	}
	slog.Info("store connection successful", "path", cfg.StorePath())
}
