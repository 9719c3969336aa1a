// Package units provides shared constants and validation for elevation units
package units

// Unit constants
const (
	Meters = "m"
	Feet   = "ft"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Meters, Feet}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m, ft"
}

// ConvertElevation converts an elevation from metres to the target units.
// Grid documents carry heights in metres.
func ConvertElevation(elevationMeters float64, targetUnits string) float64 {
	switch targetUnits {
	case Feet:
		return elevationMeters * 3.28084 // metres to feet
	case Meters:
		return elevationMeters // no conversion needed
	default:
		return elevationMeters // default to metres if unknown unit
	}
}
