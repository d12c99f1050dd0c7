// Package dbtest builds throwaway readings stores for tests, using the same
// ProbeData layout the collector creates.
package dbtest

import (
	"database/sql"
	_ "embed"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Layout is how the collector writes date_time.
const Layout = "2006-01-02 15:04:05"

// Row is one collector row. Nil pointers and empty labels are stored as NULL.
type Row struct {
	DateTime string
	Press    int64
	Label1   string
	Temp1    *float64
	Label2   string
	Temp2    *float64
}

// At formats t the way the collector does.
func At(t time.Time) string {
	return t.UTC().Format(Layout)
}

// F returns a pointer to v.
func F(v float64) *float64 { return &v }

// NewStore creates a store file with the ProbeData table in a temp dir and
// inserts rows in order. It returns the file path.
func NewStore(t *testing.T, rows ...Row) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "WeatherData.db")
	conn := open(t, path)
	defer func() { _ = conn.Close() }()

	if _, err := conn.Exec(schemaSQL); err != nil {
		t.Fatalf("dbtest: create schema: %v", err)
	}
	insert(t, conn, rows)
	return path
}

// Append inserts rows into an existing store created by NewStore.
func Append(t *testing.T, path string, rows ...Row) {
	t.Helper()
	conn := open(t, path)
	defer func() { _ = conn.Close() }()
	insert(t, conn, rows)
}

// Exec runs a raw statement against the store, for tests that need an odd layout.
func Exec(t *testing.T, path string, stmt string, args ...any) {
	t.Helper()
	conn := open(t, path)
	defer func() { _ = conn.Close() }()
	if _, err := conn.Exec(stmt, args...); err != nil {
		t.Fatalf("dbtest: exec %q: %v", stmt, err)
	}
}

func open(t *testing.T, path string) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("dbtest: open %s: %v", path, err)
	}
	return conn
}

func insert(t *testing.T, conn *sql.DB, rows []Row) {
	t.Helper()
	for _, r := range rows {
		_, err := conn.Exec(
			`INSERT INTO ProbeData (date_time, mpl_press, ds18_1_lbl, ds18_1_temp, ds18_2_lbl, ds18_2_temp)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.DateTime, r.Press, nullString(r.Label1), nullFloat(r.Temp1), nullString(r.Label2), nullFloat(r.Temp2),
		)
		if err != nil {
			t.Fatalf("dbtest: insert %+v: %v", r, err)
		}
	}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
