package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	VariantBasic    = "basic"
	VariantExtended = "extended"

	DefaultHistoryWindow  = "-168 hours"
	DefaultStoreLocation  = "/var/databases/"
	DefaultStoreName      = "WeatherData.db"
	DefaultStoreTable     = "ProbeData"
	DefaultChartLoaderURL = "https://www.gstatic.com/charts/loader.js"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// LogFile, when set, sends logs to a size-rotated file instead of stdout.
	LogFile       string
	LogMaxSizeMB  int
	LogMaxAgeDays int
	LogMaxBackups int

	StoreLocation string
	StoreName     string
	StoreTable    string

	// HistoryWindow is the chart lookback. Always positive.
	HistoryWindow  time.Duration
	PageVariant    string
	SiteName       string
	ChartLoaderURL string
}

// StorePath joins StoreLocation and StoreName.
func (c Config) StorePath() string {
	return filepath.Join(c.StoreLocation, c.StoreName)
}

// Extended reports whether the page shows temperature series and the current conditions summary.
func (c Config) Extended() bool {
	return c.PageVariant == VariantExtended
}

// fileConfig mirrors the optional TOML file named by CONFIG_FILE.
type fileConfig struct {
	AppEnv string `toml:"app_env"`
	Log    struct {
		Level      string `toml:"level"`
		File       string `toml:"file"`
		MaxSizeMB  int    `toml:"max_size_mb"`
		MaxAgeDays int    `toml:"max_age_days"`
		MaxBackups int    `toml:"max_backups"`
	} `toml:"log"`
	HTTP struct {
		Addr string `toml:"addr"`
	} `toml:"http"`
	Store struct {
		Location string `toml:"location"`
		Name     string `toml:"name"`
		Table    string `toml:"table"`
	} `toml:"store"`
	Report struct {
		HistoryWindow  string `toml:"history_window"`
		Variant        string `toml:"variant"`
		SiteName       string `toml:"site_name"`
		ChartLoaderURL string `toml:"chart_loader_url"`
	} `toml:"report"`
}

// Load reads the TOML file named by CONFIG_FILE (if any) and then applies
// environment overrides. Environment values win over file values.
func Load() (Config, error) {
	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		return LoadFromEnv()
	}
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return Config{}, fmt.Errorf("config file %q: %w", path, err)
	}
	return build(fc)
}

// LoadFromEnv builds a Config from environment variables only.
func LoadFromEnv() (Config, error) {
	return build(fileConfig{})
}

func build(fc fileConfig) (Config, error) {
	appEnv := setting("APP_ENV", fc.AppEnv, "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(setting("LOG_LEVEL", fc.Log.Level, "info"))
	if err != nil {
		return Config{}, err
	}

	maxSize, err := parsePositiveInt("LOG_MAX_SIZE_MB", setting("LOG_MAX_SIZE_MB", itoa(fc.Log.MaxSizeMB), "10"))
	if err != nil {
		return Config{}, err
	}
	maxAge, err := parsePositiveInt("LOG_MAX_AGE_DAYS", setting("LOG_MAX_AGE_DAYS", itoa(fc.Log.MaxAgeDays), "7"))
	if err != nil {
		return Config{}, err
	}
	maxBackups, err := parsePositiveInt("LOG_MAX_BACKUPS", setting("LOG_MAX_BACKUPS", itoa(fc.Log.MaxBackups), "1"))
	if err != nil {
		return Config{}, err
	}

	table := setting("STORE_TABLE", fc.Store.Table, DefaultStoreTable)
	if !ValidIdentifier(table) {
		return Config{}, fmt.Errorf("invalid STORE_TABLE %q (expected an SQL identifier)", table)
	}

	window, err := ParseHistoryWindow(setting("HISTORY_WINDOW", fc.Report.HistoryWindow, DefaultHistoryWindow))
	if err != nil {
		return Config{}, err
	}

	variant := strings.ToLower(setting("PAGE_VARIANT", fc.Report.Variant, VariantExtended))
	switch variant {
	case VariantBasic, VariantExtended:
	default:
		return Config{}, fmt.Errorf("invalid PAGE_VARIANT %q (allowed: basic, extended)", variant)
	}

	siteName := setting("SITE_NAME", fc.Report.SiteName, "")
	if siteName == "" {
		siteName, err = os.Hostname()
		if err != nil || siteName == "" {
			siteName = "WeatherStation"
		}
	}

	return Config{
		AppEnv:         appEnv,
		LogLevel:       level,
		HTTPAddr:       setting("HTTP_ADDR", fc.HTTP.Addr, ":8080"),
		LogFile:        setting("LOG_FILE", fc.Log.File, ""),
		LogMaxSizeMB:   maxSize,
		LogMaxAgeDays:  maxAge,
		LogMaxBackups:  maxBackups,
		StoreLocation:  setting("STORE_LOCATION", fc.Store.Location, DefaultStoreLocation),
		StoreName:      setting("STORE_NAME", fc.Store.Name, DefaultStoreName),
		StoreTable:     table,
		HistoryWindow:  window,
		PageVariant:    variant,
		SiteName:       siteName,
		ChartLoaderURL: setting("CHART_LOADER_URL", fc.Report.ChartLoaderURL, DefaultChartLoaderURL),
	}, nil
}

// setting returns the trimmed env value, else the file value, else def.
func setting(key, fileValue, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if v := strings.TrimSpace(fileValue); v != "" {
		return v
	}
	return def
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func parsePositiveInt(key, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s %q (must be > 0)", key, s)
	}
	return n, nil
}

var sqliteModifierRe = regexp.MustCompile(`^([+-]?)(\d+(?:\.\d+)?)\s+(second|minute|hour|day)s?$`)

// ParseHistoryWindow accepts SQLite datetime modifiers such as "-168 hours"
// and Go durations such as "168h". The sign is ignored: a lookback is always
// into the past.
func ParseHistoryWindow(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if m := sqliteModifierRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid HISTORY_WINDOW %q: %w", s, err)
		}
		unit := map[string]time.Duration{
			"second": time.Second,
			"minute": time.Minute,
			"hour":   time.Hour,
			"day":    24 * time.Hour,
		}[m[3]]
		d := time.Duration(n * float64(unit))
		if d <= 0 {
			return 0, fmt.Errorf("invalid HISTORY_WINDOW %q (must be non-zero)", s)
		}
		return d, nil
	}

	d, err := time.ParseDuration(strings.TrimPrefix(s, "-"))
	if err != nil {
		return 0, fmt.Errorf("invalid HISTORY_WINDOW %q (expected e.g. \"-168 hours\" or \"168h\")", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid HISTORY_WINDOW %q (must be non-zero)", s)
	}
	return d, nil
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether s can be used unquoted as an SQL table name.
func ValidIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
