package views

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"

	"github.com/hdtodd/WeatherStation/internal/config"
	"github.com/hdtodd/WeatherStation/internal/modules/weather/types"
)

const (
	timestampColumn = "DateTime"
	pressureColumn  = "Pressure (Pa)"
	probeCount      = 2
)

// Column is one google.visualization.DataTable column.
type Column struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// Chart is the data table and options handed to the client-side line chart.
// Rows follow the column order: timestamp, temperatures, pressure.
type Chart struct {
	Columns []Column
	Rows    [][]any
	Options map[string]any
}

// BuildChart lays out window for the page variant. The basic page charts
// pressure only. The extended page adds a column for each probe that appears
// in window or latest, with temperatures on the left axis and pressure on the right.
func BuildChart(window []types.SensorReading, latest *types.SensorReading, variant string) Chart {
	var probes []int
	if variant == config.VariantExtended {
		probes = presentProbes(window, latest)
	}

	columns := make([]Column, 0, len(probes)+2)
	columns = append(columns, Column{Type: "string", Label: timestampColumn})
	for _, n := range probes {
		columns = append(columns, Column{Type: "number", Label: probeLabel(n, window, latest) + " (°C)"})
	}
	columns = append(columns, Column{Type: "number", Label: pressureColumn})

	rows := make([][]any, 0, len(window))
	for _, r := range window {
		row := make([]any, 0, len(columns))
		row = append(row, r.Timestamp.UTC().Format(types.TimestampLayout))
		for _, n := range probes {
			if _, v := r.Probe(n); v != nil {
				row = append(row, *v)
			} else {
				row = append(row, nil)
			}
		}
		row = append(row, r.Pressure)
		rows = append(rows, row)
	}

	return Chart{
		Columns: columns,
		Rows:    rows,
		Options: chartOptions(len(probes)),
	}
}

func chartOptions(temperatures int) map[string]any {
	if temperatures == 0 {
		return map[string]any{
			"title":  pressureColumn,
			"legend": map[string]any{"position": "none"},
		}
	}

	series := make(map[string]any, temperatures+1)
	for i := 0; i < temperatures; i++ {
		series[strconv.Itoa(i)] = map[string]any{"targetAxisIndex": 0}
	}
	series[strconv.Itoa(temperatures)] = map[string]any{"targetAxisIndex": 1}

	return map[string]any{
		"title":  "Temperature and Pressure",
		"legend": map[string]any{"position": "bottom"},
		"series": series,
		"vAxes": map[string]any{
			"0": map[string]any{"title": "Temperature (°C)"},
			"1": map[string]any{"title": pressureColumn},
		},
	}
}

// presentProbes returns the probe numbers that carry a label or value anywhere.
func presentProbes(window []types.SensorReading, latest *types.SensorReading) []int {
	var out []int
	for n := 1; n <= probeCount; n++ {
		if probeSeen(n, window, latest) {
			out = append(out, n)
		}
	}
	return out
}

func probeSeen(n int, window []types.SensorReading, latest *types.SensorReading) bool {
	if latest != nil {
		if label, v := latest.Probe(n); label != "" || v != nil {
			return true
		}
	}
	for _, r := range window {
		if label, v := r.Probe(n); label != "" || v != nil {
			return true
		}
	}
	return false
}

// probeLabel prefers the latest reading's label, then the first labelled row.
func probeLabel(n int, window []types.SensorReading, latest *types.SensorReading) string {
	if latest != nil {
		if label, _ := latest.Probe(n); label != "" {
			return label
		}
	}
	for _, r := range window {
		if label, _ := r.Probe(n); label != "" {
			return label
		}
	}
	return fmt.Sprintf("Temperature %d", n)
}

// ColumnsJSON returns the column definitions as a JavaScript literal.
func (c Chart) ColumnsJSON() (template.JS, error) {
	return marshalJS(c.Columns)
}

// RowsJSON returns the data rows as a JavaScript literal. An empty chart is "[]".
func (c Chart) RowsJSON() (template.JS, error) {
	rows := c.Rows
	if rows == nil {
		rows = [][]any{}
	}
	return marshalJS(rows)
}

func (c Chart) OptionsJSON() (template.JS, error) {
	return marshalJS(c.Options)
}

func marshalJS(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode chart data: %w", err)
	}
	return template.JS(b), nil
}
