package views

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hdtodd/WeatherStation/internal/modules/weather/types"
	"github.com/hdtodd/WeatherStation/internal/units"
)

// NoData fills every summary field when the store has no readings.
const NoData = "no data"

type ProbeSummary struct {
	Label string
	Value string
}

// Summary is the "current conditions" block. Fields are preformatted strings.
type Summary struct {
	Available    bool
	Timestamp    string
	Probes       []ProbeSummary
	PressurePa   string
	PressureInHg string
}

// BuildSummary formats latest for display. A nil latest yields a Summary
// whose fields all read NoData.
func BuildSummary(latest *types.SensorReading) Summary {
	if latest == nil {
		return Summary{
			Timestamp:    NoData,
			Probes:       []ProbeSummary{{Label: "Temperature", Value: NoData}},
			PressurePa:   NoData,
			PressureInHg: NoData,
		}
	}

	s := Summary{
		Available:    true,
		Timestamp:    latest.Timestamp.UTC().Format(types.TimestampLayout),
		PressurePa:   strconv.FormatInt(latest.Pressure, 10),
		PressureInHg: fmt.Sprintf("%.2f", units.InchesOfMercury(units.Pressure(latest.Pressure))),
	}
	for n := 1; n <= probeCount; n++ {
		label, v := latest.Probe(n)
		if label == "" && v == nil {
			continue
		}
		if label == "" {
			label = fmt.Sprintf("Temperature %d", n)
		}
		value := NoData
		if v != nil {
			value = units.FormatCelsius(units.Celsius(*v))
		}
		s.Probes = append(s.Probes, ProbeSummary{Label: label, Value: value})
	}
	return s
}

// HistoryLabel renders a lookback for the page text, e.g. "168 hours".
func HistoryLabel(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
