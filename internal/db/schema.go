package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed sql/table-columns.sql
var tableColumnsSQL string

// ErrSchema means the readings table is missing or lacks a column the report reads.
var ErrSchema = errors.New("store schema mismatch")

// RequiredColumns are the collector's columns read by the report.
var RequiredColumns = []string{
	"date_time",
	"mpl_press",
	"ds18_1_lbl",
	"ds18_1_temp",
	"ds18_2_lbl",
	"ds18_2_temp",
}

// VerifySchema checks that table exists and carries RequiredColumns.
func VerifySchema(ctx context.Context, db *sqlx.DB, table string) error {
	var cols []string
	if err := db.SelectContext(ctx, &cols, tableColumnsSQL, table); err != nil {
		return fmt.Errorf("table info %s: %w", table, err)
	}
	if len(cols) == 0 {
		return fmt.Errorf("%w: table %q not found", ErrSchema, table)
	}

	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[strings.ToLower(c)] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: table %q missing columns %s", ErrSchema, table, strings.Join(missing, ", "))
	}
	return nil
}
