// Package units converts the collector's raw sensor values for display.
package units

import (
	"fmt"
	"math"

	"periph.io/x/conn/v3/physic"
)

// inHgPer100kPa is the display factor used by the station pages: 100 kPa reads as 29.53 inHg.
const inHgPer100kPa = 29.53

// Pressure converts whole pascals, as stored in mpl_press, to a physic.Pressure.
func Pressure(pascals int64) physic.Pressure {
	return physic.Pressure(pascals) * physic.Pascal
}

// Pascals returns p in pascals.
func Pascals(p physic.Pressure) float64 {
	return float64(p) / float64(physic.Pascal)
}

// InchesOfMercury returns p in inHg, rounded half-up to 2 decimals.
func InchesOfMercury(p physic.Pressure) float64 {
	return RoundHalfUp(Pascals(p)/100000.0*inHgPer100kPa, 2)
}

// Celsius converts a probe reading in degrees Celsius to a physic.Temperature,
// rounded to the nearest nanokelvin.
func Celsius(c float64) physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(math.Round(c*float64(physic.Celsius)))
}

// FormatCelsius renders t for the summary, e.g. "21.5 °C".
func FormatCelsius(t physic.Temperature) string {
	return fmt.Sprintf("%.1f °C", RoundHalfUp(t.Celsius(), 1))
}

// RoundHalfUp rounds v to places decimals, with ties going towards +Inf.
func RoundHalfUp(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	// The epsilon absorbs binary representation error on exact ties such as 2.675.
	return math.Floor(v*scale+0.5+1e-9) / scale
}
