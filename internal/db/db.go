package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ErrStoreUnavailable means the store file is missing or cannot be opened.
var ErrStoreUnavailable = errors.New("store unavailable")

// Opener opens a request-scoped handle on the readings store. Callers must
// Close the handle when the request is done.
type Opener interface {
	Open(ctx context.Context) (*sqlx.DB, error)
}

// FileOpener opens a SQLite file read-only. The file must already exist: the
// store is owned by the collector and is never created here.
type FileOpener struct {
	Path   string
	Logger *slog.Logger
}

func NewFileOpener(path string, logger *slog.Logger) *FileOpener {
	return &FileOpener{Path: path, Logger: logger}
}

func (o *FileOpener) Open(ctx context.Context) (*sqlx.DB, error) {
	return Open(ctx, o.Path, o.Logger)
}

// Open returns a single-connection, read-only handle on the SQLite file at path.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sqlx.DB, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrStoreUnavailable, path)
	}

	connector, err := NewLoggingConnector(buildDSN(path), logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	conn := sql.OpenDB(connector)
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrStoreUnavailable, path, err)
	}

	return sqlx.NewDb(conn, "sqlite3"), nil
}

func Close(db *sqlx.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// buildDSN returns a read-only URI DSN for path. mode=ro makes SQLite refuse
// writes and refuse to create a missing file.
func buildDSN(path string) string {
	params := []string{
		"mode=ro",
		"_busy_timeout=5000",
	}

	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?" + strings.Join(params, "&")
}
