package types

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hdtodd/WeatherStation/internal/units"
)

// TimestampLayout is how the collector writes date_time (SQLite datetime()).
const TimestampLayout = "2006-01-02 15:04:05"

// SensorReading is one row of the collector's table.
type SensorReading struct {
	Timestamp         time.Time `json:"timestamp"`
	TemperatureLabel1 string    `json:"temperatureLabel1,omitempty"`
	TemperatureValue1 *float64  `json:"temperatureValue1,omitempty"`
	TemperatureLabel2 string    `json:"temperatureLabel2,omitempty"`
	TemperatureValue2 *float64  `json:"temperatureValue2,omitempty"`
	// Pressure is in pascals.
	Pressure int64 `json:"pressure"`
}

// Probe returns the label and value of temperature probe n (1 or 2).
func (r SensorReading) Probe(n int) (string, *float64) {
	switch n {
	case 1:
		return r.TemperatureLabel1, r.TemperatureValue1
	case 2:
		return r.TemperatureLabel2, r.TemperatureValue2
	default:
		return "", nil
	}
}

func (r SensorReading) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("timestamp", r.Timestamp.UTC().Format(TimestampLayout)),
		slog.String("pressure", units.Pressure(r.Pressure).String()),
	}
	for n := 1; n <= 2; n++ {
		label, v := r.Probe(n)
		if v == nil {
			continue
		}
		if label == "" {
			label = fmt.Sprintf("temperature%d", n)
		}
		attrs = append(attrs, slog.String(label, units.Celsius(*v).String()))
	}
	return slog.GroupValue(attrs...)
}
