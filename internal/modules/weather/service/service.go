package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hdtodd/WeatherStation/internal/db"
	"github.com/hdtodd/WeatherStation/internal/modules/weather/repository"
	"github.com/hdtodd/WeatherStation/internal/modules/weather/types"
)

// Report is everything a page needs from one pass over the store.
type Report struct {
	History time.Duration
	Window  []types.SensorReading
	// Latest is nil when the store is empty or the page does not show a summary.
	Latest *types.SensorReading
}

type ReportService interface {
	BuildReport(ctx context.Context, history time.Duration) (Report, error)
	Window(ctx context.Context, history time.Duration) ([]types.SensorReading, error)
	Latest(ctx context.Context) (*types.SensorReading, error)
}

type Service struct {
	opener   db.Opener
	table    string
	extended bool
	logger   *slog.Logger
	repoOpts []repository.Option
}

func NewService(opener db.Opener, table string, extended bool, logger *slog.Logger, opts ...repository.Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		opener:   opener,
		table:    table,
		extended: extended,
		logger:   logger,
		repoOpts: opts,
	}
}

// BuildReport reads the history window and, for the extended page, the latest
// reading, over a single store handle that is closed before returning.
func (s *Service) BuildReport(ctx context.Context, history time.Duration) (Report, error) {
	report := Report{History: history}
	err := s.withRepository(ctx, func(repo repository.WeatherRepository) error {
		window, err := repo.FetchWindow(ctx, history)
		if err != nil {
			return err
		}
		report.Window = window

		if !s.extended {
			return nil
		}
		latest, err := repo.FetchLatest(ctx)
		if err != nil {
			return err
		}
		report.Latest = latest
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	attrs := []any{"history", history.String(), "rows", len(report.Window)}
	if report.Latest != nil {
		attrs = append(attrs, "latest", *report.Latest)
	}
	s.logger.Debug("report built", attrs...)
	return report, nil
}

func (s *Service) Window(ctx context.Context, history time.Duration) ([]types.SensorReading, error) {
	var window []types.SensorReading
	err := s.withRepository(ctx, func(repo repository.WeatherRepository) error {
		var err error
		window, err = repo.FetchWindow(ctx, history)
		return err
	})
	return window, err
}

func (s *Service) Latest(ctx context.Context) (*types.SensorReading, error) {
	var latest *types.SensorReading
	err := s.withRepository(ctx, func(repo repository.WeatherRepository) error {
		var err error
		latest, err = repo.FetchLatest(ctx)
		return err
	})
	return latest, err
}

func (s *Service) withRepository(ctx context.Context, fn func(repository.WeatherRepository) error) error {
	conn, err := s.opener.Open(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.close(conn)

	repo, err := repository.NewRepository(conn, s.table, s.repoOpts...)
	if err != nil {
		return err
	}
	return fn(repo)
}

func (s *Service) close(conn *sqlx.DB) {
	if err := db.Close(conn); err != nil {
		s.logger.Warn("store close failed", "error", err)
	}
}
