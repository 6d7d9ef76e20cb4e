// Package units provides shared constants and conversions for volume units
package units

import "math"

// Unit constants
const (
	CubicMeters = "m3"
	Liters      = "liters"
)

// Display precision for report metadata. Cubic-meter values are rounded to
// six decimals and liter values to three so repeated runs of the same scan
// produce byte-identical documents.
const (
	CubicMeterPrecision = 6
	LiterPrecision      = 3
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{CubicMeters, Liters}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ToLiters converts a volume from cubic meters to liters.
// Estimators and the analytic reference work in cubic meters; liters exist
// only as a display conversion.
func ToLiters(volumeM3 float64) float64 {
	return volumeM3 * 1000
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// RoundCubicMeters rounds a cubic-meter value to display precision.
func RoundCubicMeters(v float64) float64 {
	return Round(v, CubicMeterPrecision)
}

// RoundLiters rounds a liter value to display precision.
func RoundLiters(v float64) float64 {
	return Round(v, LiterPrecision)
}
