package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hdtodd/WeatherStation/internal/db"
	"github.com/hdtodd/WeatherStation/internal/db/dbtest"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func openStore(t *testing.T, path string) *sqlx.DB {
	t.Helper()
	conn, err := db.Open(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(conn); closeErr != nil {
			t.Fatalf("close store: %v", closeErr)
		}
	})
	return conn
}

func newRepo(t *testing.T, rows ...dbtest.Row) WeatherRepository {
	t.Helper()
	repo, err := NewRepository(openStore(t, dbtest.NewStore(t, rows...)), "ProbeData", WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	return repo
}

func hoursAgo(h float64) string {
	return dbtest.At(testNow.Add(-time.Duration(h * float64(time.Hour))))
}

func TestNewRepository_invalidTable(t *testing.T) {
	conn := openStore(t, dbtest.NewStore(t))
	for _, table := range []string{"", "Probe Data", `ProbeData"; --`, "9x"} {
		if _, err := NewRepository(conn, table); err == nil {
			t.Errorf("NewRepository(%q) = nil error; want error", table)
		}
	}
}

func TestFetchWindow_Empty(t *testing.T) {
	repo := newRepo(t)

	readings, err := repo.FetchWindow(context.Background(), 168*time.Hour)
	if err != nil {
		t.Fatalf("FetchWindow: %v", err)
	}
	if readings == nil {
		t.Fatal("FetchWindow returned nil slice; want empty")
	}
	if len(readings) != 0 {
		t.Fatalf("FetchWindow: got %d readings, want 0", len(readings))
	}
}

func TestFetchWindow_BoundsAndOrder(t *testing.T) {
	// Inserted out of timestamp order on purpose.
	repo := newRepo(t,
		dbtest.Row{DateTime: hoursAgo(2), Press: 100200},
		dbtest.Row{DateTime: hoursAgo(200), Press: 99000},  // outside 168h
		dbtest.Row{DateTime: hoursAgo(168), Press: 99100},  // exactly on the bound: excluded
		dbtest.Row{DateTime: hoursAgo(167.5), Press: 99200},
		dbtest.Row{DateTime: hoursAgo(0.25), Press: 100300},
	)

	readings, err := repo.FetchWindow(context.Background(), 168*time.Hour)
	if err != nil {
		t.Fatalf("FetchWindow: %v", err)
	}
	want := []int64{99200, 100200, 100300}
	if len(readings) != len(want) {
		t.Fatalf("FetchWindow: got %d readings, want %d: %+v", len(readings), len(want), readings)
	}
	cutoff := testNow.Add(-168 * time.Hour)
	for i, r := range readings {
		if r.Pressure != want[i] {
			t.Errorf("reading[%d].Pressure = %d, want %d", i, r.Pressure, want[i])
		}
		if !r.Timestamp.After(cutoff) {
			t.Errorf("reading[%d] at %v is not after cutoff %v", i, r.Timestamp, cutoff)
		}
		if i > 0 && r.Timestamp.Before(readings[i-1].Timestamp) {
			t.Errorf("reading[%d] out of order", i)
		}
	}

	short, err := repo.FetchWindow(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("FetchWindow(1h): %v", err)
	}
	if len(short) != 1 || short[0].Pressure != 100300 {
		t.Errorf("FetchWindow(1h) = %+v; want only the 15 minute old row", short)
	}
}

func TestFetchWindow_ProbesAndNulls(t *testing.T) {
	repo := newRepo(t,
		dbtest.Row{DateTime: hoursAgo(3), Press: 101325, Label1: " Outside ", Temp1: dbtest.F(12.5), Label2: "Inside", Temp2: dbtest.F(21)},
		dbtest.Row{DateTime: hoursAgo(2), Press: 101300},
	)

	readings, err := repo.FetchWindow(context.Background(), 168*time.Hour)
	if err != nil {
		t.Fatalf("FetchWindow: %v", err)
	}
	if len(readings) != 2 {
		t.Fatalf("got %d readings, want 2", len(readings))
	}

	first := readings[0]
	if first.TemperatureLabel1 != "Outside" || first.TemperatureLabel2 != "Inside" {
		t.Errorf("labels = %q/%q; want Outside/Inside", first.TemperatureLabel1, first.TemperatureLabel2)
	}
	if first.TemperatureValue1 == nil || *first.TemperatureValue1 != 12.5 {
		t.Errorf("TemperatureValue1 = %v; want 12.5", first.TemperatureValue1)
	}
	if first.TemperatureValue2 == nil || *first.TemperatureValue2 != 21 {
		t.Errorf("TemperatureValue2 = %v; want 21", first.TemperatureValue2)
	}
	wantTS := testNow.Add(-3 * time.Hour)
	if !first.Timestamp.Equal(wantTS) {
		t.Errorf("Timestamp = %v; want %v", first.Timestamp, wantTS)
	}

	second := readings[1]
	if second.TemperatureValue1 != nil || second.TemperatureValue2 != nil {
		t.Errorf("NULL probes should scan as nil, got %v/%v", second.TemperatureValue1, second.TemperatureValue2)
	}
	if second.TemperatureLabel1 != "" {
		t.Errorf("NULL label should scan as empty, got %q", second.TemperatureLabel1)
	}
}

func TestFetchWindow_RFC3339Timestamps(t *testing.T) {
	repo := newRepo(t,
		dbtest.Row{DateTime: testNow.Add(-time.Hour).Format(time.RFC3339), Press: 100000},
		dbtest.Row{DateTime: testNow.Add(-300 * time.Hour).Format(time.RFC3339), Press: 90000},
	)

	readings, err := repo.FetchWindow(context.Background(), 168*time.Hour)
	if err != nil {
		t.Fatalf("FetchWindow: %v", err)
	}
	if len(readings) != 1 || readings[0].Pressure != 100000 {
		t.Fatalf("FetchWindow = %+v; want the RFC3339 row within the window", readings)
	}
}

func TestFetchLatest_Empty(t *testing.T) {
	repo := newRepo(t)

	latest, err := repo.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if latest != nil {
		t.Fatalf("FetchLatest = %+v; want nil on empty store", latest)
	}
}

func TestFetchLatest_MaxTimestamp(t *testing.T) {
	repo := newRepo(t,
		dbtest.Row{DateTime: hoursAgo(1), Press: 101000},
		dbtest.Row{DateTime: hoursAgo(5), Press: 100000},
		dbtest.Row{DateTime: hoursAgo(500), Press: 99000},
	)

	latest, err := repo.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if latest == nil || latest.Pressure != 101000 {
		t.Fatalf("FetchLatest = %+v; want the 1h old row", latest)
	}
}

func TestFetchLatest_TieBreaksOnInsertionOrder(t *testing.T) {
	path := dbtest.NewStore(t)
	// date_time is the primary key in the collector's schema, so ties can only
	// come from equivalent spellings of the same instant.
	ts := testNow.Add(-time.Hour)
	dbtest.Append(t, path,
		dbtest.Row{DateTime: dbtest.At(ts), Press: 100001},
		dbtest.Row{DateTime: ts.Format("2006-01-02T15:04:05Z"), Press: 100002},
	)
	repo, err := NewRepository(openStore(t, path), "ProbeData")
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}

	latest, err := repo.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if latest == nil || latest.Pressure != 100001 {
		t.Fatalf("FetchLatest = %+v; want the first inserted of the tied rows", latest)
	}
}

func TestQueryErrors(t *testing.T) {
	path := dbtest.NewStore(t)
	repo, err := NewRepository(openStore(t, path), "NoSuchTable")
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}

	if _, err := repo.FetchWindow(context.Background(), time.Hour); !errors.Is(err, ErrQuery) {
		t.Errorf("FetchWindow on missing table err = %v; want ErrQuery", err)
	}
	if _, err := repo.FetchLatest(context.Background()); !errors.Is(err, ErrQuery) {
		t.Errorf("FetchLatest on missing table err = %v; want ErrQuery", err)
	}
}

func TestQueryHonoursCancelledContext(t *testing.T) {
	repo := newRepo(t, dbtest.Row{DateTime: hoursAgo(1), Press: 100000})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.FetchWindow(ctx, time.Hour); err == nil {
		t.Error("FetchWindow(cancelled) = nil error; want error")
	}
}

func TestFetchWindow_ZonedTimestamps(t *testing.T) {
	repo := newRepo(t,
		dbtest.Row{DateTime: "2026-10-17 10:00:00+02:00", Press: 100100}, // 08:00Z
		dbtest.Row{DateTime: "2026-10-17 11:30:00+02:00", Press: 100200}, // 09:30Z, outside 2h
		dbtest.Row{DateTime: "2026-10-17 11:00:00Z", Press: 100300},
		dbtest.Row{DateTime: "2026-10-17T10:45:00-01:00", Press: 100400}, // 11:45Z
	)

	readings, err := repo.FetchWindow(context.Background(), 5*time.Hour)
	if err != nil {
		t.Fatalf("FetchWindow: %v", err)
	}
	want := []struct {
		press int64
		ts    time.Time
	}{
		{100100, time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)},
		{100200, time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)},
		{100300, time.Date(2026, 10, 17, 11, 0, 0, 0, time.UTC)},
		{100400, time.Date(2026, 10, 17, 11, 45, 0, 0, time.UTC)},
	}
	if len(readings) != len(want) {
		t.Fatalf("FetchWindow: got %d readings, want %d: %+v", len(readings), len(want), readings)
	}
	for i, w := range want {
		if readings[i].Pressure != w.press || !readings[i].Timestamp.Equal(w.ts) {
			t.Errorf("reading[%d] = %d at %v; want %d at %v", i, readings[i].Pressure, readings[i].Timestamp, w.press, w.ts)
		}
	}

	short, err := repo.FetchWindow(context.Background(), 2*time.Hour)
	if err != nil {
		t.Fatalf("FetchWindow(2h): %v", err)
	}
	if len(short) != 2 || short[0].Pressure != 100300 || short[1].Pressure != 100400 {
		t.Errorf("FetchWindow(2h) = %+v; want the 11:00Z and 11:45Z rows", short)
	}

	latest, err := repo.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if latest == nil || latest.Pressure != 100400 {
		t.Errorf("FetchLatest = %+v; want the 11:45Z row", latest)
	}
}

func TestFetchWindow_FractionalSeconds(t *testing.T) {
	repo := newRepo(t,
		dbtest.Row{DateTime: "2026-10-17 11:00:00.500", Press: 100500},
		dbtest.Row{DateTime: "2026-10-17 11:00:00.900", Press: 100900},
	)

	// cutoff falls at 11:00:00.700
	readings, err := repo.FetchWindow(context.Background(), time.Hour-700*time.Millisecond)
	if err != nil {
		t.Fatalf("FetchWindow: %v", err)
	}
	if len(readings) != 1 || readings[0].Pressure != 100900 {
		t.Fatalf("FetchWindow = %+v; want only the .900 row", readings)
	}
	want := time.Date(2026, 10, 17, 11, 0, 0, 900*int(time.Millisecond), time.UTC)
	if !readings[0].Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v; want %v", readings[0].Timestamp, want)
	}
}

func TestFetchLatest_SkipsUnparseableTimestamps(t *testing.T) {
	repo := newRepo(t,
		dbtest.Row{DateTime: hoursAgo(3), Press: 100000},
		dbtest.Row{DateTime: "not a time", Press: 99999},
	)

	latest, err := repo.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if latest == nil || latest.Pressure != 100000 {
		t.Fatalf("FetchLatest = %+v; want the 3h old row", latest)
	}

	readings, err := repo.FetchWindow(context.Background(), 168*time.Hour)
	if err != nil {
		t.Fatalf("FetchWindow: %v", err)
	}
	if len(readings) != 1 {
		t.Fatalf("FetchWindow: got %d readings, want 1", len(readings))
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2026, 1, 2, 3, 4, 5, 250*int(time.Millisecond), time.UTC)
	got, err := parseTimestamp("2026-01-02T03:04:05.250Z")
	if err != nil {
		t.Fatalf("parseTimestamp error = %v", err)
	}
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Errorf("parseTimestamp = %v; want %v", got, want)
	}
	for _, in := range []string{"yesterday", "2026-01-02 03:04:05", ""} {
		if _, err := parseTimestamp(in); err == nil {
			t.Errorf("parseTimestamp(%q) = nil error; want error", in)
		}
	}
}
