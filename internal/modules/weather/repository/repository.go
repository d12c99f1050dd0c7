package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hdtodd/WeatherStation/internal/config"
	"github.com/hdtodd/WeatherStation/internal/modules/weather/types"
)

//go:embed sql/fetch-window.sql
var fetchWindowSQL string

//go:embed sql/fetch-latest.sql
var fetchLatestSQL string

// ErrQuery wraps failures of a query against an open store.
var ErrQuery = errors.New("store query failed")

type WeatherRepository interface {
	// FetchWindow returns readings newer than now-history, oldest first.
	FetchWindow(ctx context.Context, history time.Duration) ([]types.SensorReading, error)
	// FetchLatest returns the newest reading, or nil when the store is empty.
	// Rows sharing the newest timestamp resolve to the first inserted.
	FetchLatest(ctx context.Context) (*types.SensorReading, error)
}

type Option func(*repositoryImpl)

// WithClock replaces time.Now as the reference for history windows.
func WithClock(now func() time.Time) Option {
	return func(r *repositoryImpl) { r.now = now }
}

type repositoryImpl struct {
	db        *sqlx.DB
	windowSQL string
	latestSQL string
	now       func() time.Time
}

// NewRepository binds the queries to table. table must be a plain SQL identifier.
func NewRepository(db *sqlx.DB, table string, opts ...Option) (WeatherRepository, error) {
	if !config.ValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	quoted := `"` + table + `"`
	r := &repositoryImpl{
		db:        db,
		windowSQL: strings.ReplaceAll(fetchWindowSQL, "{{table}}", quoted),
		latestSQL: strings.ReplaceAll(fetchLatestSQL, "{{table}}", quoted),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type readingRow struct {
	DateTime string          `db:"date_time"`
	Press    sql.NullInt64   `db:"mpl_press"`
	Label1   sql.NullString  `db:"ds18_1_lbl"`
	Temp1    sql.NullFloat64 `db:"ds18_1_temp"`
	Label2   sql.NullString  `db:"ds18_2_lbl"`
	Temp2    sql.NullFloat64 `db:"ds18_2_temp"`
}

func (r *repositoryImpl) FetchWindow(ctx context.Context, history time.Duration) ([]types.SensorReading, error) {
	cutoff := r.now().Add(-history).UTC().Format(cutoffLayout)

	var rows []readingRow
	if err := r.db.SelectContext(ctx, &rows, r.windowSQL, cutoff); err != nil {
		return nil, fmt.Errorf("%w: fetch window since %s: %w", ErrQuery, cutoff, err)
	}

	out := make([]types.SensorReading, 0, len(rows))
	for _, row := range rows {
		reading, err := row.toReading()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrQuery, err)
		}
		out = append(out, reading)
	}
	return out, nil
}

func (r *repositoryImpl) FetchLatest(ctx context.Context) (*types.SensorReading, error) {
	var row readingRow
	err := r.db.GetContext(ctx, &row, r.latestSQL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetch latest: %w", ErrQuery, err)
	}

	reading, err := row.toReading()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return &reading, nil
}

func (row readingRow) toReading() (types.SensorReading, error) {
	ts, err := parseTimestamp(row.DateTime)
	if err != nil {
		return types.SensorReading{}, err
	}
	reading := types.SensorReading{
		Timestamp:         ts,
		TemperatureLabel1: strings.TrimSpace(row.Label1.String),
		TemperatureLabel2: strings.TrimSpace(row.Label2.String),
		Pressure:          row.Press.Int64,
	}
	if row.Temp1.Valid {
		v := row.Temp1.Float64
		reading.TemperatureValue1 = &v
	}
	if row.Temp2.Valid {
		v := row.Temp2.Float64
		reading.TemperatureValue2 = &v
	}
	return reading, nil
}

// The queries normalise date_time through strftime, so every row arrives in
// this one UTC form regardless of how the collector spelled it.
const (
	storedLayout = "2006-01-02T15:04:05.000Z"
	cutoffLayout = "2006-01-02 15:04:05.000"
)

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(storedLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date_time %q: %w", s, err)
	}
	return t, nil
}
