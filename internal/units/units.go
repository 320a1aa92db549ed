// Package units converts metric kinematics into display units.
//
// Everything inside the pipeline is metres and seconds. Conversion happens
// only when a value is printed or summarised for a person.
package units

import (
	"fmt"
	"strings"
)

// Speed unit names accepted on the command line and in config.
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// ValidUnits contains all valid unit values.
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

const (
	metersPerMile = 1609.344
	secondsPerHr  = 3600.0
)

// IsValid checks if the given unit is in the list of valid units.
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// Normalize lower-cases a unit name and validates it.
func Normalize(unit string) (string, error) {
	u := strings.ToLower(strings.TrimSpace(unit))
	if !IsValid(u) {
		return "", fmt.Errorf("invalid speed unit %q (valid: %s)", unit, GetValidUnitsString())
	}
	return u, nil
}

// GetValidUnitsString returns a comma-separated list of valid units for error messages.
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ConvertSpeed converts a speed from metres per second to the target units.
// Unknown units fall back to m/s.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * secondsPerHr / metersPerMile
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// SpeedLabel returns the printable suffix for a speed unit.
func SpeedLabel(unit string) string {
	switch unit {
	case MPH:
		return "mph"
	case KMPH, KPH:
		return "km/h"
	default:
		return "m/s"
	}
}

// Standard gravity, used to express accelerations in g.
const StandardGravity = 9.80665

// AccelerationInG converts m/s² to multiples of standard gravity.
func AccelerationInG(accelMPS2 float64) float64 {
	return accelMPS2 / StandardGravity
}
