package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hdtodd/WeatherStation/internal/config"
)

// New builds the process logger. It returns the log sink so the caller can
// close a rotating file on shutdown; the sink is os.Stdout when no file is set.
func New(cfg config.Config, version string, appName string) (*slog.Logger, io.WriteCloser) {
	out := Output(cfg)

	if version == "dev" {
		h := tint.NewHandler(out, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.LogFile != "",
		})
		return slog.New(h).With("app", appName), out
	}

	h := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	), out
}

// Output returns stdout, or a size-rotated file when cfg.LogFile is set.
func Output(cfg config.Config) io.WriteCloser {
	if cfg.LogFile == "" || cfg.LogFile == "/dev/stdout" {
		return nopCloser{os.Stdout}
	}
	return &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxAge:     cfg.LogMaxAgeDays,
		MaxBackups: cfg.LogMaxBackups,
		LocalTime:  true,
		Compress:   true,
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
